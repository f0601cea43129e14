package prompt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/field"
	"leadform-embed/internal/model"
	"leadform-embed/internal/submit"
	"leadform-embed/internal/validation"
	"leadform-embed/internal/widget"
)

type stubDriver struct {
	inputs    []string
	confirm   []bool
	textAreas []string

	inputPos   int
	confirmPos int
	textPos    int

	asked    []InputConfig
	confirms []ConfirmConfig
	infos    []string

	// tick runs before every answer; tests use it to move the clock
	tick func()
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	s.advance()
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.confirms = append(s.confirms, cfg)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	s.advance()
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	s.advance()
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func (s *stubDriver) advance() {
	if s.tick != nil {
		s.tick()
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) tick() {
	c.mu.Lock()
	c.now = c.now.Add(2 * time.Second)
	c.mu.Unlock()
}

type fakeSubmitter struct {
	attempts []submit.Attempt
	errs     []error
}

func (f *fakeSubmitter) Submit(_ context.Context, a submit.Attempt) (any, error) {
	f.attempts = append(f.attempts, a)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return "ok", nil
}

func newWidget(t *testing.T, cfg model.FormConfig, sub widget.Submitter, clk *clock) *widget.Widget {
	t.Helper()
	w, err := widget.New(cfg, model.SourceFloating,
		widget.WithLogger(zaptest.NewLogger(t)),
		widget.WithSubmitter(sub),
		widget.WithClock(clk.Now),
	)
	require.NoError(t, err)
	return w
}

func TestRunSubmitsAnswers(t *testing.T) {
	clk := &clock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	sub := &fakeSubmitter{}
	cfg := model.FormConfig{
		SiteSlug:                "acme",
		SitePublicKey:           "pk",
		Title:                   "<b>Talk</b> to us",
		Fields:                  []model.FieldKind{model.FieldName, model.FieldEmail, model.FieldMessage},
		RequireConsent:          true,
		RequireMarketingConsent: true,
	}
	w := newWidget(t, cfg, sub, clk)
	d := &stubDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		textAreas: []string{"Need a quote"},
		confirm:   []bool{true, false},
		tick:      clk.tick,
	}

	result, err := New(zaptest.NewLogger(t), d).Run(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	require.Len(t, sub.attempts, 1)
	a := sub.attempts[0]
	assert.Equal(t, model.FormRecord{"name": "Ada", "email": "ada@example.com", "message": "Need a quote"}, a.Record)
	require.NotNil(t, a.Consent)
	assert.True(t, a.Consent.ConsentGiven)
	require.NotNil(t, a.Consent.MarketingConsentGiven)
	assert.False(t, *a.Consent.MarketingConsentGiven)

	assert.Equal(t, "Name *", d.asked[0].Message)
	assert.Equal(t, submit.ConsentText, d.confirms[0].Message)
	assert.Equal(t, submit.MarketingConsentText, d.confirms[1].Message)
	assert.Equal(t, "Talk to us", d.infos[0])
	assert.Contains(t, d.infos, "Success")
}

func TestRunReasksAfterValidationFailure(t *testing.T) {
	clk := &clock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	sub := &fakeSubmitter{}
	cfg := model.FormConfig{
		SiteSlug:      "acme",
		SitePublicKey: "pk",
		Fields:        []model.FieldKind{model.FieldEmail, model.FieldPhone},
	}
	w := newWidget(t, cfg, sub, clk)
	d := &stubDriver{
		inputs: []string{"", "", "ada@example.com", ""},
		tick:   clk.tick,
	}

	_, err := New(zaptest.NewLogger(t), d).Run(context.Background(), w)
	require.NoError(t, err)
	assert.Contains(t, d.infos, "email: "+validation.MsgEmailOrPhone)
	assert.Contains(t, d.infos, "phone: "+validation.MsgEmailOrPhone)
	require.Len(t, sub.attempts, 1)
	assert.Equal(t, "ada@example.com", sub.attempts[0].Record["email"])
}

func TestRunRetriesWithSameKey(t *testing.T) {
	clk := &clock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	sub := &fakeSubmitter{errs: []error{&apperror.SubmissionError{Status: 503}}}
	cfg := model.FormConfig{SiteSlug: "acme", SitePublicKey: "pk", Fields: []model.FieldKind{model.FieldName, model.FieldEmail}}
	w := newWidget(t, cfg, sub, clk)
	d := &stubDriver{
		inputs:  []string{"Ada", "ada@example.com"},
		confirm: []bool{true},
		tick:    clk.tick,
	}

	_, err := New(zaptest.NewLogger(t), d).Run(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, sub.attempts, 2)
	assert.Equal(t, sub.attempts[0].IdempotencyKey, sub.attempts[1].IdempotencyKey)
	assert.Equal(t, msgRetry, d.confirms[0].Message)
}

func TestRunGivesUpWhenRetryDeclined(t *testing.T) {
	clk := &clock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	sub := &fakeSubmitter{errs: []error{&apperror.SubmissionError{Status: 500}}}
	cfg := model.FormConfig{SiteSlug: "acme", SitePublicKey: "pk", Fields: []model.FieldKind{model.FieldName, model.FieldEmail}}
	w := newWidget(t, cfg, sub, clk)
	d := &stubDriver{
		inputs:  []string{"Ada", "ada@example.com"},
		confirm: []bool{false},
		tick:    clk.tick,
	}

	_, err := New(zaptest.NewLogger(t), d).Run(context.Background(), w)
	var failed *apperror.SubmissionError
	assert.True(t, errors.As(err, &failed))
	assert.Len(t, sub.attempts, 1)
}

func TestRunStopsOnSpam(t *testing.T) {
	clk := &clock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	sub := &fakeSubmitter{}
	cfg := model.FormConfig{SiteSlug: "acme", SitePublicKey: "pk", Fields: []model.FieldKind{model.FieldName, model.FieldEmail}}
	w := newWidget(t, cfg, sub, clk)
	d := &stubDriver{inputs: []string{"Ada", "ada@example.com"}}

	_, err := New(zaptest.NewLogger(t), d).Run(context.Background(), w)
	var rej *apperror.SpamRejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, model.ErrorTiming, rej.Kind)
	assert.Empty(t, sub.attempts)
}

func TestRunPropagatesDriverError(t *testing.T) {
	clk := &clock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	cfg := model.FormConfig{SiteSlug: "acme", SitePublicKey: "pk"}
	w := newWidget(t, cfg, &fakeSubmitter{}, clk)

	_, err := New(zaptest.NewLogger(t), &stubDriver{}).Run(context.Background(), w)
	assert.EqualError(t, err, "no input scripted")
}

func TestAnswerValidator(t *testing.T) {
	name, _ := field.Default(model.FieldName)
	email, _ := field.Default(model.FieldEmail)
	phone, _ := field.Default(model.FieldPhone)

	tests := []struct {
		name     string
		d        field.Descriptor
		optional bool
		value    string
		want     string
	}{
		{name: "required blank", d: name, value: "  ", want: validation.MsgRequired},
		{name: "required filled", d: name, value: "Ada"},
		{name: "paired blank", d: email, optional: true, value: ""},
		{name: "bad email", d: email, value: "ada@", want: validation.MsgInvalidEmail},
		{name: "bad phone", d: phone, value: "1111111111", want: validation.MsgInvalidPhone},
		{name: "good phone", d: phone, value: "+44 20 7946 0958"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := answerValidator(tc.d, tc.optional)(tc.value)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "We'll call you", Plain("<p>We'll <em>call</em> you</p>"))
	assert.Equal(t, "", Plain("<script>alert(1)</script>"))
}
