// Package prompt is the terminal presentation shell. It asks for the
// configured fields one by one and submits them through a widget.
package prompt

import (
	"context"
	"errors"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/field"
	"leadform-embed/internal/model"
	"leadform-embed/internal/submit"
	"leadform-embed/internal/validation"
	"leadform-embed/internal/widget"
)

const msgRetry = "Failed to submit form. Try again?"

var plainText = bluemonday.StrictPolicy()

// Shell drives one widget from a terminal.
type Shell struct {
	driver Driver
	log    *zap.Logger
}

// New returns a Shell that talks through driver.
func New(log *zap.Logger, driver Driver) *Shell {
	return &Shell{driver: driver, log: log}
}

// Run opens w, collects answers and submits them. Validation failures are
// reported and the fields asked again with the previous answers as
// defaults. A failed submission can be retried with the same idempotency
// key. Spam rejections end the run.
func (s *Shell) Run(ctx context.Context, w *widget.Widget) (any, error) {
	if !w.Visible() {
		if err := w.Show(); err != nil {
			return nil, err
		}
	}
	cfg := w.Config()
	if err := s.say(ctx, cfg.Title, cfg.Subtitle); err != nil {
		return nil, err
	}

	record := make(model.FormRecord)
	collect := true
	for {
		if collect {
			if err := s.collect(ctx, cfg, record); err != nil {
				return nil, err
			}
			if err := w.Replace(record); err != nil {
				return nil, err
			}
		}

		result, err := w.Submit(ctx)
		var (
			invalid *apperror.ValidationError
			failed  *apperror.SubmissionError
		)
		switch {
		case err == nil:
			return result, s.say(ctx, cfg.SuccessTitle, cfg.SuccessSubtitle)
		case errors.As(err, &invalid):
			if err := s.report(ctx, invalid.Fields); err != nil {
				return nil, err
			}
			collect = true
		case errors.As(err, &failed):
			s.log.Warn("lead submission failed", zap.Error(err))
			retry, cerr := s.driver.Confirm(ctx, ConfirmConfig{Message: msgRetry, Default: true})
			if cerr != nil {
				return nil, cerr
			}
			if !retry {
				return nil, err
			}
			collect = false
		default:
			return nil, err
		}
	}
}

func (s *Shell) collect(ctx context.Context, cfg model.FormConfig, record model.FormRecord) error {
	paired := cfg.HasField(model.FieldEmail) && cfg.HasField(model.FieldPhone)

	for _, d := range field.Select(cfg) {
		message := d.Label
		if d.Required {
			message += " *"
		}
		key := string(d.Kind)

		var (
			value string
			err   error
		)
		if d.Multiline() {
			value, err = s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: record[key], Help: d.Placeholder})
		} else {
			optional := paired && (d.Kind == model.FieldEmail || d.Kind == model.FieldPhone)
			value, err = s.driver.Input(ctx, InputConfig{
				Message:   message,
				Default:   record[key],
				Help:      d.Placeholder,
				Validator: answerValidator(d, optional),
			})
		}
		if err != nil {
			return err
		}
		record[key] = value
	}

	if cfg.RequireConsent {
		ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: submit.ConsentText, Default: record.Checked(model.KeyConsent)})
		if err != nil {
			return err
		}
		record[model.KeyConsent] = strconv.FormatBool(ok)
	}

	delete(record, model.KeyMarketingConsent)
	if field.MarketingConsentVisible(cfg, record) {
		ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: submit.MarketingConsentText, Default: true})
		if err != nil {
			return err
		}
		record[model.KeyMarketingConsent] = strconv.FormatBool(ok)
	}
	return nil
}

func (s *Shell) report(ctx context.Context, errs map[string]string) error {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.driver.Info(ctx, k+": "+errs[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) say(ctx context.Context, lines ...string) error {
	for _, line := range lines {
		line = Plain(line)
		if line == "" {
			continue
		}
		if err := s.driver.Info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// answerValidator rejects a blank required answer and a malformed email or
// phone. optional fields may stay blank; the pair rule is left to the
// validation engine.
func answerValidator(d field.Descriptor, optional bool) func(string) error {
	check := field.Check(d.Kind)
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			if d.Required && !optional {
				return errors.New(validation.MsgRequired)
			}
			return nil
		}
		if check != nil && !check(value) {
			return errors.New(validation.InvalidMessage(d.Kind))
		}
		return nil
	}
}

// Plain strips markup from configured copy for terminal output.
func Plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
