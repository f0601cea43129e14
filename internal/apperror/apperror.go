// Package apperror defines the lead form error taxonomy and maps validator
// errors to readable messages.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"leadform-embed/internal/model"
)

// ErrSubmitInProgress is returned when a submit is attempted while another
// one is still outstanding on the same widget.
var ErrSubmitInProgress = errors.New("submission already in progress")

// ErrDestroyed is returned by operations on a destroyed widget.
var ErrDestroyed = errors.New("widget destroyed")

var (
	errRequired        = errors.New("is required")
	errInvalidTheme    = errors.New("must be one of light, dark, auto")
	errInvalidPosition = errors.New("must be one of bottom-right, bottom-left, top-right, top-left, center")
	errInvalidURL      = errors.New("must be an absolute URL")
)

var customErrors = map[string]error{
	"FormConfig.SiteSlug.required":      errRequired,
	"FormConfig.SitePublicKey.required": errRequired,
	"FormConfig.Theme.oneof":            errInvalidTheme,
	"FormConfig.Position.oneof":         errInvalidPosition,
	"FormConfig.APIEndpoint.url":        errInvalidURL,
}

var tagErrors = map[string]error{
	"required": errRequired,
}

// ConfigurationError reports a configuration that cannot produce a form.
type ConfigurationError struct {
	Fields map[string]string
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) == 0 {
		return "leadform: invalid configuration"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "leadform: " + strings.Join(parts, "; ")
}

// SpamRejection is returned when a spam heuristic drops an attempt.
type SpamRejection struct {
	Kind    model.ErrorType
	Message string
}

func (e *SpamRejection) Error() string {
	return fmt.Sprintf("spam rejected (%s): %s", e.Kind, e.Message)
}

// ValidationError carries per-field messages for a rejected record.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "form validation failed"
}

// SubmissionError wraps a failed network call or a non-2xx response.
// Status is zero when no response was received.
type SubmissionError struct {
	Status int
	Body   string
	Err    error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	case e.Err != nil:
		return "submission failed: " + e.Err.Error()
	}
	return "submission failed"
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// CustomValidationError converts validator errors into a field->message map.
// Other errors yield nil.
func CustomValidationError(err error) map[string]string {
	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return nil
	}

	out := make(map[string]string, len(validationErr))
	for _, e := range validationErr {
		key := e.StructNamespace() + "." + e.Tag()

		errMsg := fmt.Sprintf("%s is invalid", e.StructNamespace())
		if v, ok := customErrors[key]; ok {
			errMsg = v.Error()
		} else if v, ok := tagErrors[e.Tag()]; ok {
			errMsg = v.Error()
		}
		out[e.Field()] = errMsg
	}
	return out
}

// ErrorType classifies err for an error event. Unknown errors count as
// submission failures.
func ErrorType(err error) model.ErrorType {
	var spam *SpamRejection
	var invalid *ValidationError
	switch {
	case errors.As(err, &spam):
		return spam.Kind
	case errors.As(err, &invalid):
		return model.ErrorValidation
	}
	return model.ErrorSubmission
}
