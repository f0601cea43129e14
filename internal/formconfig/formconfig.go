// Package formconfig normalizes caller supplied form configuration into a
// fully populated model.FormConfig.
package formconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/field"
	"leadform-embed/internal/model"
)

// Default lead API endpoints. The floating widget and the inline component
// have always posted to different routes.
const (
	FloatingEndpoint = "https://api.loubase.com/leads"
	InlineEndpoint   = "https://api.loubase.com/v1/leads"
)

const (
	defaultTitle            = "Get in touch"
	defaultSubtitle         = "We'd love to hear from you. Send us a message and we'll respond as soon as possible."
	defaultButtonText       = "Contact us"
	defaultCloseButtonLabel = "Close"
	defaultSuccessMessage   = "Thank you! We'll get back to you soon."
	defaultSuccessTitle     = "Success"
	defaultSuccessSubtitle  = "We'll get back to you soon!"
	defaultAccentColor      = "#3b82f6"
)

var defaultFields = []model.FieldKind{model.FieldName, model.FieldEmail, model.FieldMessage}

var allKinds = []model.FieldKind{
	model.FieldName, model.FieldEmail, model.FieldCompany, model.FieldPhone, model.FieldMessage,
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

var structValidator = validator.New()

// Normalize merges partial with the documented defaults. It fails with a
// *apperror.ConfigurationError when the site identity is missing or the
// enumerated settings are out of range.
func Normalize(partial model.FormConfig, source model.Source) (model.FormConfig, error) {
	cfg := partial
	cfg.SiteSlug = strings.TrimSpace(cfg.SiteSlug)
	cfg.SitePublicKey = strings.TrimSpace(cfg.SitePublicKey)
	cfg.APIEndpoint = strings.TrimSpace(cfg.APIEndpoint)

	if err := structValidator.Struct(cfg); err != nil {
		return model.FormConfig{}, &apperror.ConfigurationError{Fields: apperror.CustomValidationError(err)}
	}

	// successTitle falls back to the caller's successMessage, not the default.
	cfg.SuccessTitle = firstNonEmpty(cfg.SuccessTitle, cfg.SuccessMessage, defaultSuccessTitle)

	cfg.Title = firstNonEmpty(cfg.Title, defaultTitle)
	cfg.Subtitle = firstNonEmpty(cfg.Subtitle, defaultSubtitle)
	cfg.ButtonText = firstNonEmpty(cfg.ButtonText, defaultButtonText)
	cfg.CloseButtonLabel = firstNonEmpty(cfg.CloseButtonLabel, defaultCloseButtonLabel)
	cfg.SuccessMessage = firstNonEmpty(cfg.SuccessMessage, defaultSuccessMessage)
	cfg.SuccessSubtitle = firstNonEmpty(cfg.SuccessSubtitle, defaultSuccessSubtitle)

	labels := make(map[model.FieldKind]string, len(allKinds))
	placeholders := make(map[model.FieldKind]string, len(allKinds))
	for _, kind := range allKinds {
		d, _ := field.Default(kind)
		labels[kind] = firstNonEmpty(partial.Labels[kind], d.Label)
		placeholders[kind] = firstNonEmpty(partial.Placeholders[kind], d.Placeholder)
	}
	cfg.Labels = labels
	cfg.Placeholders = placeholders

	if len(cfg.Fields) == 0 {
		cfg.Fields = defaultFields
	}
	cfg.Fields = append([]model.FieldKind(nil), cfg.Fields...)

	if cfg.Theme == "" {
		cfg.Theme = model.ThemeAuto
	}
	if cfg.Position == "" {
		cfg.Position = model.PositionBottomRight
	}
	cfg.AccentColor = NormalizeColor(cfg.AccentColor)

	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = FloatingEndpoint
		if source == model.SourceInline {
			cfg.APIEndpoint = InlineEndpoint
		}
	}
	return cfg, nil
}

// NormalizeColor returns input when it is a #rgb, #rrggbb or #rrggbbaa hex
// colour, otherwise the default accent.
func NormalizeColor(input string) string {
	input = strings.TrimSpace(input)
	if hexColor.MatchString(input) {
		return input
	}
	return defaultAccentColor
}

// LoadFile reads a partial form configuration from a YAML or JSON file.
// The result still needs Normalize.
func LoadFile(path string) (model.FormConfig, error) {
	var cfg model.FormConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read form config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse form config %s: %w", path, err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
