// Package widget is the lead form handle: it owns the configuration, the
// current form session and the submit pipeline
// (spam guard, validation, submission).
package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/events"
	"leadform-embed/internal/formconfig"
	"leadform-embed/internal/model"
	"leadform-embed/internal/spam"
	"leadform-embed/internal/submit"
	"leadform-embed/internal/validation"
)

// ErrNotOpen is returned when a floating widget is used while hidden.
var ErrNotOpen = errors.New("form is not open")

const (
	msgValidation = "Form validation failed"
	msgSubmission = "Failed to submit form"
)

// Submitter sends a prepared attempt. *submit.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, a submit.Attempt) (any, error)
}

// Session is one open/mount of the form. Its idempotency key is reused by
// every retry of the same attempt.
type Session struct {
	Key       string
	StartedAt time.Time
	Record    model.FormRecord
}

// Widget is a single lead form instance. It is safe for concurrent use.
type Widget struct {
	cfg    model.FormConfig
	source model.Source
	log    *zap.Logger
	events *events.Registry
	client Submitter
	guard  spam.Guard
	ip     submit.IPResolver
	env    model.Environment
	now    func() time.Time
	newKey func() string

	mu         sync.Mutex
	visible    bool
	destroyed  bool
	submitting bool
	session    *Session
}

// Option configures a Widget.
type Option func(*Widget)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Widget) { w.log = log }
}

// WithSubmitter replaces the submission client.
func WithSubmitter(s Submitter) Option {
	return func(w *Widget) { w.client = s }
}

// WithSpamGuard replaces the spam heuristics.
func WithSpamGuard(g spam.Guard) Option {
	return func(w *Widget) { w.guard = g }
}

// WithEnvironment sets the client environment captured at construction.
func WithEnvironment(env model.Environment) Option {
	return func(w *Widget) { w.env = env }
}

// WithIPResolver resolves the client address for consent events when the
// environment does not carry one.
func WithIPResolver(r submit.IPResolver) Option {
	return func(w *Widget) { w.ip = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// WithKeyGenerator overrides idempotency key generation.
func WithKeyGenerator(gen func() string) Option {
	return func(w *Widget) { w.newKey = gen }
}

// New normalizes partial and returns a widget for the given integration.
// The inline component is mounted immediately; the floating widget starts
// its first session on Show.
func New(partial model.FormConfig, source model.Source, opts ...Option) (*Widget, error) {
	cfg, err := formconfig.Normalize(partial, source)
	if err != nil {
		return nil, err
	}

	w := &Widget{
		cfg:    cfg,
		source: source,
		guard:  spam.New(spam.DefaultMinDwell),
		now:    time.Now,
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	if w.client == nil {
		w.client = submit.New(w.log, submit.WithClock(w.now))
	}
	w.events = events.NewRegistry(w.log)

	if source == model.SourceInline {
		w.visible = true
		w.session = w.startSession()
	}
	return w, nil
}

// Config returns the normalized configuration.
func (w *Widget) Config() model.FormConfig { return w.cfg }

// Source returns the integration tag sent with submissions.
func (w *Widget) Source() model.Source { return w.source }

// On registers a listener.
func (w *Widget) On(event model.EventType, fn events.Listener) events.Subscription {
	return w.events.On(event, fn)
}

// Off removes a listener.
func (w *Widget) Off(sub events.Subscription) { w.events.Off(sub) }

// Visible reports whether the form is shown.
func (w *Widget) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// IsSubmitting reports whether a submission is outstanding.
func (w *Widget) IsSubmitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Session returns a copy of the current session.
func (w *Widget) Session() (Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return Session{}, false
	}
	s := *w.session
	s.Record = copyRecord(s.Record)
	return s, true
}

// Show opens the form, starting a new session when none is active.
func (w *Widget) Show() error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return apperror.ErrDestroyed
	}
	w.visible = true
	if w.session == nil {
		w.session = w.startSession()
	}
	w.mu.Unlock()

	w.events.Emit(events.Event{Type: model.EventOpen})
	return nil
}

// Hide closes the form and discards the session. An outstanding submission
// is not cancelled.
func (w *Widget) Hide() error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return apperror.ErrDestroyed
	}
	w.visible = false
	w.session = nil
	w.mu.Unlock()

	w.events.Emit(events.Event{Type: model.EventClose})
	return nil
}

// Toggle shows a hidden form and hides a visible one.
func (w *Widget) Toggle() error {
	if w.Visible() {
		return w.Hide()
	}
	return w.Show()
}

// Reset discards the entered values and starts a fresh session with a new
// idempotency key.
func (w *Widget) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return apperror.ErrDestroyed
	}
	if !w.visible {
		return ErrNotOpen
	}
	w.session = w.startSession()
	return nil
}

// Destroy releases the widget. Listeners are dropped and every later call
// fails with apperror.ErrDestroyed.
func (w *Widget) Destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.visible = false
	w.session = nil
	w.mu.Unlock()
	w.events.Clear()
}

// Set records one field value in the current session.
func (w *Widget) Set(key, value string) error {
	return w.Fill(model.FormRecord{key: value})
}

// Fill records several field values in the current session.
func (w *Widget) Fill(values model.FormRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usableLocked(); err != nil {
		return err
	}
	for k, v := range values {
		w.session.Record[k] = v
	}
	return nil
}

// Replace swaps the entered values for values. The session and its
// idempotency key are kept.
func (w *Widget) Replace(values model.FormRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usableLocked(); err != nil {
		return err
	}
	w.session.Record = copyRecord(values)
	return nil
}

// Submit runs the current session through the spam guard, validation and
// the lead API. Every failure is also emitted as an error event.
func (w *Widget) Submit(ctx context.Context) (any, error) {
	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, apperror.ErrSubmitInProgress
	}
	sess := w.session
	record := copyRecord(sess.Record)

	if err := w.guard.Check(record, sess.StartedAt, w.now()); err != nil {
		w.mu.Unlock()
		var rej *apperror.SpamRejection
		errors.As(err, &rej)
		w.log.Warn("submission rejected as spam", zap.String("signal", string(rej.Kind)))
		w.emitError(err, rej.Message, nil)
		return nil, err
	}

	if res := validation.Validate(record, w.cfg); !res.Valid {
		w.mu.Unlock()
		err := &apperror.ValidationError{Fields: res.Errors}
		w.emitError(err, msgValidation, res.Errors)
		return nil, err
	}

	w.submitting = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	env := w.environment(ctx)
	cleaned := record.Clean(w.cfg)
	result, err := w.client.Submit(ctx, submit.Attempt{
		Config:         w.cfg,
		Record:         cleaned,
		Consent:        submit.NewConsentEvent(w.cfg, record, env, w.now()),
		Env:            env,
		Source:         w.source,
		IdempotencyKey: sess.Key,
		StartedAt:      sess.StartedAt,
	})
	if err != nil {
		w.log.Error("lead form submission error", zap.String("idempotency_key", sess.Key), zap.Error(err))
		w.emitError(err, msgSubmission, nil)
		return nil, err
	}

	w.mu.Lock()
	if w.session == sess {
		w.session = w.startSession()
	}
	w.mu.Unlock()

	w.events.Emit(events.Event{Type: model.EventSubmit, Submit: &model.SubmitEvent{Data: cleaned, Result: result}})
	return result, nil
}

func (w *Widget) usableLocked() error {
	if w.destroyed {
		return apperror.ErrDestroyed
	}
	if w.session == nil {
		return ErrNotOpen
	}
	return nil
}

func (w *Widget) environment(ctx context.Context) model.Environment {
	env := w.env
	if env.ClientIP == "" && w.ip != nil && (w.cfg.RequireConsent || w.cfg.RequireMarketingConsent) {
		if ip, err := w.ip.ClientIP(ctx); err == nil {
			env.ClientIP = ip
		}
	}
	return env
}

func (w *Widget) startSession() *Session {
	return &Session{
		Key:       w.newKey(),
		StartedAt: w.now(),
		Record:    make(model.FormRecord),
	}
}

// emitError publishes err as an error event typed by apperror.ErrorType.
func (w *Widget) emitError(err error, message string, fields map[string]string) {
	ev := model.ErrorEvent{Type: apperror.ErrorType(err), Message: message, Fields: fields, Err: err}
	w.events.Emit(events.Event{Type: model.EventError, Error: &ev})
}

func copyRecord(r model.FormRecord) model.FormRecord {
	out := make(model.FormRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
