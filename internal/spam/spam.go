// Package spam rejects submissions that look automated.
package spam

import (
	"strings"
	"time"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/model"
)

// DefaultMinDwell is the shortest time a person plausibly needs to fill in
// the form.
const DefaultMinDwell = 3 * time.Second

const (
	msgHoneypot = "Honeypot field filled"
	msgTiming   = "Form submitted too quickly"
)

// Guard holds the spam heuristics settings.
type Guard struct {
	MinDwell time.Duration
}

// New returns a Guard with the given dwell threshold. A non-positive value
// selects DefaultMinDwell.
func New(minDwell time.Duration) Guard {
	if minDwell <= 0 {
		minDwell = DefaultMinDwell
	}
	return Guard{MinDwell: minDwell}
}

// Check returns a *apperror.SpamRejection when the honeypot is filled or the
// form was submitted less than MinDwell after startedAt.
func (g Guard) Check(record model.FormRecord, startedAt, now time.Time) error {
	if Honeypot(record) {
		return &apperror.SpamRejection{Kind: model.ErrorHoneypot, Message: msgHoneypot}
	}
	if now.Sub(startedAt) < g.minDwell() {
		return &apperror.SpamRejection{Kind: model.ErrorTiming, Message: msgTiming}
	}
	return nil
}

// Honeypot reports whether the hidden website field carries a value.
func Honeypot(record model.FormRecord) bool {
	return strings.TrimSpace(record.Value(model.KeyHoneypot)) != ""
}

func (g Guard) minDwell() time.Duration {
	if g.MinDwell <= 0 {
		return DefaultMinDwell
	}
	return g.MinDwell
}
