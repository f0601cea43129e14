// Package submit builds the lead payload and posts it to the lead API.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/model"
)

// DefaultTimeout bounds a single submission request.
const DefaultTimeout = 10 * time.Second

// IdempotencyHeader carries the attempt's idempotency key.
const IdempotencyHeader = "X-Idempotency-Key"

// isoMillis matches the ISO-8601 form browsers produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

const maxResponseBody = 1 << 20

// Attempt is one logical submission of a session.
type Attempt struct {
	Config         model.FormConfig
	Record         model.FormRecord
	Consent        *model.ConsentEvent
	Env            model.Environment
	Source         model.Source
	IdempotencyKey string
	StartedAt      time.Time
}

// Client posts attempts to the configured endpoint.
type Client struct {
	log  *zap.Logger
	http *http.Client
	now  func() time.Time
	mock bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithMock makes Submit succeed without any network call.
func WithMock(mock bool) Option {
	return func(c *Client) { c.mock = mock }
}

// New creates a Client.
func New(log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		log:  log,
		http: &http.Client{Timeout: DefaultTimeout},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the client's current time.
func (c *Client) Now() time.Time { return c.now() }

// BuildPayload assembles the wire payload for a.
func (c *Client) BuildPayload(a Attempt) model.SubmissionPayload {
	now := c.now()
	return model.SubmissionPayload{
		SiteSlug:          a.Config.SiteSlug,
		SitePublicKey:     a.Config.SitePublicKey,
		FormData:          a.Record,
		ConsentEvent:      a.Consent,
		DeviceFingerprint: a.Env.Fingerprint,
		Source:            a.Source,
		SubmissionTime:    now.Sub(a.StartedAt).Milliseconds(),
		UserAgent:         a.Env.UserAgent,
		Timestamp:         FormatTime(now),
		URL:               a.Env.PageURL,
		IdempotencyKey:    a.IdempotencyKey,
	}
}

// Submit performs exactly one POST for a and returns the decoded response
// body. Failures are returned as *apperror.SubmissionError.
func (c *Client) Submit(ctx context.Context, a Attempt) (any, error) {
	payload := c.BuildPayload(a)

	if c.mock {
		c.log.Info("mock submission", zap.String("site", payload.SiteSlug), zap.String("idempotency_key", payload.IdempotencyKey))
		return map[string]any{"success": true, "message": "Form submitted successfully"}, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &apperror.SubmissionError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Config.APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &apperror.SubmissionError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(IdempotencyHeader, a.IdempotencyKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("POST failed", zap.String("endpoint", a.Config.APIEndpoint), zap.Error(err))
		return nil, &apperror.SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &apperror.SubmissionError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("lead API rejected submission",
			zap.Int("status", resp.StatusCode),
			zap.String("idempotency_key", a.IdempotencyKey))
		return nil, &apperror.SubmissionError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var result any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, &apperror.SubmissionError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	c.log.Info("lead submitted",
		zap.String("site", payload.SiteSlug),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// FormatTime renders t the way browsers render Date.toISOString.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
