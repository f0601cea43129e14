// Package field declares the supported lead form inputs and selects the ones
// a configuration displays.
package field

import (
	"github.com/go-playground/validator/v10"

	"leadform-embed/internal/model"
	"leadform-embed/internal/validate"
)

// checkTags maps the kinds with a syntax rule to their validator tag.
var checkTags = map[model.FieldKind]string{
	model.FieldEmail: validate.TagEmail,
	model.FieldPhone: validate.TagPhone,
}

var tagValidator = newTagValidator()

func newTagValidator() *validator.Validate {
	v := validator.New()
	if err := validate.Register(v); err != nil {
		panic(err)
	}
	return v
}

// InputKind is the kind of control a field renders as.
type InputKind string

const (
	InputText     InputKind = "text"
	InputEmail    InputKind = "email"
	InputPhone    InputKind = "tel"
	InputTextarea InputKind = "textarea"
)

// Descriptor is the resolved rendering and validation policy for a field.
type Descriptor struct {
	Kind        model.FieldKind
	Label       string
	Placeholder string
	Input       InputKind
	Required    bool
}

// Multiline reports whether the field renders as a text area.
func (d Descriptor) Multiline() bool { return d.Input == InputTextarea }

var defaults = map[model.FieldKind]Descriptor{
	model.FieldName: {
		Kind:        model.FieldName,
		Label:       "Name",
		Placeholder: "Your name",
		Input:       InputText,
		Required:    true,
	},
	model.FieldEmail: {
		Kind:        model.FieldEmail,
		Label:       "Email",
		Placeholder: "your.email@example.com",
		Input:       InputEmail,
		Required:    true,
	},
	model.FieldCompany: {
		Kind:        model.FieldCompany,
		Label:       "Company",
		Placeholder: "Your company",
		Input:       InputText,
	},
	model.FieldPhone: {
		Kind:        model.FieldPhone,
		Label:       "Phone",
		Placeholder: "(555) 123-4567",
		Input:       InputPhone,
	},
	model.FieldMessage: {
		Kind:        model.FieldMessage,
		Label:       "Message",
		Placeholder: "Tell us about your project...",
		Input:       InputTextarea,
	},
}

// Default returns the static descriptor for kind.
func Default(kind model.FieldKind) (Descriptor, bool) {
	d, ok := defaults[kind]
	return d, ok
}

// Describe returns the descriptor for kind with labels and placeholders taken
// from cfg when set.
func Describe(kind model.FieldKind, cfg model.FormConfig) (Descriptor, bool) {
	d, ok := defaults[kind]
	if !ok {
		return Descriptor{}, false
	}
	if label := cfg.Labels[kind]; label != "" {
		d.Label = label
	}
	if placeholder := cfg.Placeholders[kind]; placeholder != "" {
		d.Placeholder = placeholder
	}
	return d, true
}

// Select returns the descriptors for cfg.Fields in display order. Unknown
// names are skipped.
func Select(cfg model.FormConfig) []Descriptor {
	out := make([]Descriptor, 0, len(cfg.Fields))
	for _, kind := range cfg.Fields {
		if d, ok := Describe(kind, cfg); ok {
			out = append(out, d)
		}
	}
	return out
}

// Check returns the syntax validator for kind, or nil when the field only
// has a required-ness rule.
func Check(kind model.FieldKind) func(string) bool {
	tag, ok := checkTags[kind]
	if !ok {
		return nil
	}
	return func(value string) bool {
		return tagValidator.Var(value, tag) == nil
	}
}

// MarketingConsentVisible reports whether a marketing consent answer counts.
// When the form has an email field it only counts once a valid email has
// been entered.
func MarketingConsentVisible(cfg model.FormConfig, record model.FormRecord) bool {
	if !cfg.RequireMarketingConsent {
		return false
	}
	if !cfg.HasField(model.FieldEmail) {
		return true
	}
	return validate.Email(record.Value(string(model.FieldEmail)))
}
