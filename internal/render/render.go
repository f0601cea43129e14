// Package render produces the HTML markup of a lead form.
package render

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"leadform-embed/internal/field"
	"leadform-embed/internal/model"
	"leadform-embed/internal/submit"
)

// View is everything needed to draw a form.
type View struct {
	Config model.FormConfig
	Action string
	Hidden map[string]string
	Values model.FormRecord
	Errors map[string]string
	// Notice is a form level message such as a failed submission.
	Notice string
}

type fieldView struct {
	ID          string
	Name        string
	Label       string
	Placeholder string
	Type        string
	Required    bool
	Multiline   bool
	Value       string
	Error       string
}

type consentView struct {
	Show    bool
	Text    template.HTML
	Checked bool
	Error   string
}

type formView struct {
	Theme       string
	Position    string
	Accent      string
	Styles      bool
	Title       template.HTML
	Subtitle    template.HTML
	Close       string
	Action      string
	Hidden      map[string]string
	Fields      []fieldView
	Honeypot    string
	Consent     consentView
	Marketing   consentView
	Button      string
	Notice      string
	StyleID     string
	SuccessHead template.HTML
	SuccessBody template.HTML
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// copyPolicy allows the light inline formatting site owners put in titles
// and disclosure text.
func copyPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		p := bluemonday.StrictPolicy()
		p.AllowElements("strong", "em", "b", "i", "br", "span")
		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("https", "http", "mailto")
		p.RequireNoFollowOnLinks(true)
		textPolicy = p
	})
	return textPolicy
}

// Sanitize strips everything but inline formatting from configured copy.
func Sanitize(raw string) template.HTML {
	return template.HTML(strings.TrimSpace(copyPolicy().Sanitize(raw)))
}

// Form renders the form described by v into doc. The stylesheet is only
// emitted the first time doc sees it.
func Form(v View, doc *Document) (string, error) {
	cfg := v.Config
	fv := formView{
		Theme:    string(cfg.Theme),
		Position: string(cfg.Position),
		Accent:   cfg.AccentColor,
		Styles:   doc.EnsureStylesheet(StylesheetID),
		StyleID:  StylesheetID,
		Title:    Sanitize(cfg.Title),
		Subtitle: Sanitize(cfg.Subtitle),
		Close:    cfg.CloseButtonLabel,
		Action:   v.Action,
		Hidden:   v.Hidden,
		Honeypot: model.KeyHoneypot,
		Button:   cfg.ButtonText,
		Notice:   v.Notice,
	}

	for _, d := range field.Select(cfg) {
		name := string(d.Kind)
		fv.Fields = append(fv.Fields, fieldView{
			ID:          "leadform-" + name,
			Name:        name,
			Label:       d.Label,
			Placeholder: d.Placeholder,
			Type:        string(d.Input),
			Required:    d.Required,
			Multiline:   d.Multiline(),
			Value:       v.Values.Value(name),
			Error:       v.Errors[name],
		})
	}

	if cfg.RequireConsent {
		fv.Consent = consentView{
			Show:    true,
			Text:    Sanitize(submit.ConsentText),
			Checked: v.Values.Checked(model.KeyConsent),
			Error:   v.Errors[model.KeyConsent],
		}
	}
	if cfg.RequireMarketingConsent {
		checked := true
		if _, set := v.Values[model.KeyMarketingConsent]; set {
			checked = v.Values.Checked(model.KeyMarketingConsent)
		}
		fv.Marketing = consentView{
			Show:    true,
			Text:    Sanitize(submit.MarketingConsentText),
			Checked: checked,
		}
	}

	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, fv); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Success renders the confirmation shown after a successful submission.
func Success(cfg model.FormConfig, doc *Document) (string, error) {
	fv := formView{
		Theme:       string(cfg.Theme),
		Position:    string(cfg.Position),
		Accent:      cfg.AccentColor,
		Styles:      doc.EnsureStylesheet(StylesheetID),
		StyleID:     StylesheetID,
		Close:       cfg.CloseButtonLabel,
		SuccessHead: Sanitize(cfg.SuccessTitle),
		SuccessBody: Sanitize(cfg.SuccessSubtitle),
	}
	var buf bytes.Buffer
	if err := successTemplate.Execute(&buf, fv); err != nil {
		return "", err
	}
	return buf.String(), nil
}
