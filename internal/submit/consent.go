package submit

import (
	"time"

	"leadform-embed/internal/field"
	"leadform-embed/internal/model"
)

// Disclosure texts shown next to the consent checkboxes.
const (
	ConsentText          = "We value your privacy. By submitting this form, you consent to us storing your details for the purpose of responding to your request."
	MarketingConsentText = "I agree to receive marketing communications relevant to my request. I understand I can unsubscribe at any time."
)

// NewConsentEvent records what the visitor agreed to. It returns nil when the
// form asks for neither consent.
func NewConsentEvent(cfg model.FormConfig, record model.FormRecord, env model.Environment, now time.Time) *model.ConsentEvent {
	if !cfg.RequireConsent && !cfg.RequireMarketingConsent {
		return nil
	}

	ev := &model.ConsentEvent{
		Timestamp:                 FormatTime(now),
		IP:                        env.ClientIP,
		UserAgent:                 env.UserAgent,
		ConsentText:               ConsentText,
		ConsentGiven:              cfg.RequireConsent && record.Checked(model.KeyConsent),
		MarketingConsentRequested: cfg.RequireMarketingConsent,
	}
	if cfg.RequireMarketingConsent {
		text := MarketingConsentText
		given := field.MarketingConsentVisible(cfg, record) && record.Checked(model.KeyMarketingConsent)
		ev.MarketingConsentText = &text
		ev.MarketingConsentGiven = &given
	}
	return ev
}
