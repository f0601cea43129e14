// Package model holds the lead form configuration, record and wire types.
package model

import "strings"

// FieldKind names one of the supported form inputs.
type FieldKind string

const (
	FieldName    FieldKind = "name"
	FieldEmail   FieldKind = "email"
	FieldCompany FieldKind = "company"
	FieldPhone   FieldKind = "phone"
	FieldMessage FieldKind = "message"
)

// Known reports whether k is one of the five supported kinds.
func (k FieldKind) Known() bool {
	switch k {
	case FieldName, FieldEmail, FieldCompany, FieldPhone, FieldMessage:
		return true
	}
	return false
}

// Reserved record keys that never reach the submitted form data.
const (
	KeyConsent          = "consent"
	KeyMarketingConsent = "marketingConsent"
	KeyHoneypot         = "website"
)

// Theme selects the colour scheme of the rendered form.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Position places the floating widget on the page.
type Position string

const (
	PositionBottomRight Position = "bottom-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionTopRight    Position = "top-right"
	PositionTopLeft     Position = "top-left"
	PositionCenter      Position = "center"
)

// Source tags the integration a submission came from.
type Source string

const (
	SourceFloating Source = "embed"
	SourceInline   Source = "react-form"
)

// FormConfig is the per-instance configuration. It is immutable once
// normalized.
type FormConfig struct {
	SiteSlug      string `json:"siteSlug" yaml:"siteSlug" validate:"required"`
	SitePublicKey string `json:"sitePublicKey" yaml:"sitePublicKey" validate:"required"`

	Title            string `json:"title,omitempty" yaml:"title"`
	Subtitle         string `json:"subtitle,omitempty" yaml:"subtitle"`
	ButtonText       string `json:"buttonText,omitempty" yaml:"buttonText"`
	CloseButtonLabel string `json:"closeButtonLabel,omitempty" yaml:"closeButtonLabel"`
	SuccessMessage   string `json:"successMessage,omitempty" yaml:"successMessage"`
	SuccessTitle     string `json:"successTitle,omitempty" yaml:"successTitle"`
	SuccessSubtitle  string `json:"successSubtitle,omitempty" yaml:"successSubtitle"`

	Labels       map[FieldKind]string `json:"labels,omitempty" yaml:"labels"`
	Placeholders map[FieldKind]string `json:"placeholders,omitempty" yaml:"placeholders"`

	Fields      []FieldKind `json:"fields,omitempty" yaml:"fields"`
	Theme       Theme       `json:"theme,omitempty" yaml:"theme" validate:"omitempty,oneof=light dark auto"`
	AccentColor string      `json:"accentColor,omitempty" yaml:"accentColor"`
	Position    Position    `json:"position,omitempty" yaml:"position" validate:"omitempty,oneof=bottom-right bottom-left top-right top-left center"`

	RequireConsent          bool `json:"requireConsent" yaml:"requireConsent"`
	RequireMarketingConsent bool `json:"requireMarketingConsent" yaml:"requireMarketingConsent"`

	APIEndpoint string `json:"apiEndpoint,omitempty" yaml:"apiEndpoint" validate:"omitempty,url"`
}

// HasField reports whether kind is one of the configured fields.
func (c FormConfig) HasField(kind FieldKind) bool {
	for _, f := range c.Fields {
		if f == kind {
			return true
		}
	}
	return false
}

// FormRecord maps field names to raw user input.
type FormRecord map[string]string

// Value returns the raw value for key, or "" when absent.
func (r FormRecord) Value(key string) string {
	if r == nil {
		return ""
	}
	return r[key]
}

// Checked reports whether a checkbox pseudo-field was ticked. Browsers post
// "on", the inline component stores "true".
func (r FormRecord) Checked(key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.Value(key))) {
	case "on", "true", "yes", "1":
		return true
	}
	return false
}

// Clean returns a copy holding only configured, known fields. Consent flags
// and the honeypot are dropped.
func (r FormRecord) Clean(cfg FormConfig) FormRecord {
	out := make(FormRecord, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if !f.Known() {
			continue
		}
		if v, ok := r[string(f)]; ok {
			out[string(f)] = v
		}
	}
	return out
}
