// Package validation applies the field policy to a submitted record.
//
// When a form carries both an email and a phone field, neither is required
// on its own. Any value that is filled in must still be well formed, and at
// least one of the two must be present and valid.
package validation

import (
	"strings"

	"leadform-embed/internal/field"
	"leadform-embed/internal/model"
)

// Messages shown next to a failing field.
const (
	MsgRequired        = "This field is required"
	MsgInvalidEmail    = "Please enter a valid email address"
	MsgInvalidPhone    = "Please enter a valid phone number"
	MsgEmailOrPhone    = "Please provide either a valid email or phone number"
	MsgConsentRequired = "Consent is required"
)

// Result holds every problem found in a record.
type Result struct {
	Errors map[string]string
	Valid  bool
}

// Validate checks record against cfg. It does not stop at the first error.
func Validate(record model.FormRecord, cfg model.FormConfig) Result {
	errs := make(map[string]string)

	contactPair := cfg.HasField(model.FieldEmail) && cfg.HasField(model.FieldPhone)

	for _, d := range field.Select(cfg) {
		value := record.Value(string(d.Kind))
		blank := strings.TrimSpace(value) == ""

		paired := contactPair && (d.Kind == model.FieldEmail || d.Kind == model.FieldPhone)
		if d.Required && !paired && blank {
			errs[string(d.Kind)] = MsgRequired
			continue
		}
		if blank {
			continue
		}
		if check := field.Check(d.Kind); check != nil && !check(value) {
			errs[string(d.Kind)] = InvalidMessage(d.Kind)
		}
	}

	if contactPair {
		email := record.Value(string(model.FieldEmail))
		phone := record.Value(string(model.FieldPhone))
		emailOK := strings.TrimSpace(email) != "" && field.Check(model.FieldEmail)(email)
		phoneOK := strings.TrimSpace(phone) != "" && field.Check(model.FieldPhone)(phone)
		if !emailOK && !phoneOK {
			errs[string(model.FieldEmail)] = MsgEmailOrPhone
			errs[string(model.FieldPhone)] = MsgEmailOrPhone
		}
	}

	if cfg.RequireConsent && !record.Checked(model.KeyConsent) {
		errs[model.KeyConsent] = MsgConsentRequired
	}

	return Result{Errors: errs, Valid: len(errs) == 0}
}

// InvalidMessage is the message for a malformed value of kind.
func InvalidMessage(kind model.FieldKind) string {
	if kind == model.FieldPhone {
		return MsgInvalidPhone
	}
	return MsgInvalidEmail
}
