// Package validate provides syntactic checks for email addresses and phone
// numbers, usable directly or as go-playground validator tags.
package validate

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nanpPattern  = regexp.MustCompile(`^[2-9]\d{2}[2-9]\d{6}$`)
	nanp1Pattern = regexp.MustCompile(`^1[2-9]\d{2}[2-9]\d{6}$`)
	intlPattern  = regexp.MustCompile(`^\d{7,15}$`)
	phoneStrip   = regexp.MustCompile(`[^\d+]`)
)

// sequentialRuns are digit runs that mark an obviously fake number.
var sequentialRuns = []string{
	"012345", "123456", "234567", "345678", "456789", "567890",
	"654321", "543210", "432109", "321098", "210987", "109876", "098765",
}

// Email reports whether s looks like local@domain.tld. No DNS lookups.
func Email(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	return emailPattern.MatchString(trimmed)
}

// Phone reports whether s is a plausible 10-15 digit phone number that is
// not a repeated or sequential filler.
func Phone(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}

	digits := strings.ReplaceAll(phoneStrip.ReplaceAllString(s, ""), "+", "")
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}

	var ok bool
	switch {
	case len(digits) == 10:
		ok = nanpPattern.MatchString(digits)
	case len(digits) == 11 && digits[0] == '1':
		ok = nanp1Pattern.MatchString(digits)
	default:
		ok = intlPattern.MatchString(digits)
	}
	if !ok {
		return false
	}

	if repeatedDigit(digits) {
		return false
	}
	for _, run := range sequentialRuns {
		if strings.Contains(digits, run) {
			return false
		}
	}
	return true
}

// repeatedDigit reports whether digits is a single digit repeated 7+ times.
func repeatedDigit(digits string) bool {
	if len(digits) < 7 {
		return false
	}
	return strings.Count(digits, digits[:1]) == len(digits)
}

// EmailValidator adapts Email to a validator.Func.
var EmailValidator = func(fl validator.FieldLevel) bool {
	return Email(fl.Field().String())
}

// PhoneValidator adapts Phone to a validator.Func.
var PhoneValidator = func(fl validator.FieldLevel) bool {
	return Phone(fl.Field().String())
}

// Validator tags installed by Register.
const (
	TagEmail = "leademail"
	TagPhone = "leadphone"
)

// Register installs the leademail and leadphone tags on v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagEmail, EmailValidator); err != nil {
		return err
	}
	return v.RegisterValidation(TagPhone, PhoneValidator)
}
