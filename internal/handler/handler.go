// Package handler is the HTTP presentation shell: it serves form markup and
// feeds posted forms through a widget session.
package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadform-embed/internal/apperror"
	"leadform-embed/internal/events"
	"leadform-embed/internal/model"
	"leadform-embed/internal/render"
	"leadform-embed/internal/widget"
)

// SessionField is the hidden input that ties a post to its form session.
const SessionField = "session"

// Factory builds a widget for one visitor.
type Factory func(env model.Environment) (*widget.Widget, error)

type session struct {
	widget  *widget.Widget
	created time.Time
}

// Handler wraps HTTP handlers with logger and the per visitor sessions.
type Handler struct {
	log     *zap.Logger
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a new Handler instance. Sessions older than ttl are dropped.
func New(log *zap.Logger, factory Factory, ttl time.Duration) *Handler {
	return &Handler{
		log:      log,
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Routes mounts the shell endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.Healthz)
	r.Get("/form", h.Form)
	r.Post("/submit", h.Submit)
	r.Post("/close", h.Close)
	return r
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Form opens a session and renders an empty form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.sweep()

	wd, err := h.factory(EnvironmentFrom(r))
	if err != nil {
		h.log.Error("failed to build widget", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "form unavailable"})
		return
	}
	if err := wd.Show(); err != nil {
		h.log.Error("failed to open form", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "form unavailable"})
		return
	}
	wd.On(model.EventError, func(ev events.Event) {
		h.log.Info("lead form error event", zap.String("type", string(ev.Error.Type)), zap.String("message", ev.Error.Message))
	})

	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[id] = &session{widget: wd, created: h.now()}
	h.mu.Unlock()

	h.renderForm(w, http.StatusOK, id, wd, nil, nil, "")
}

// Submit runs a posted form through the session's widget.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	id := r.PostForm.Get(SessionField)
	wd, ok := h.lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session"})
		return
	}

	record := make(model.FormRecord, len(r.PostForm))
	for key := range r.PostForm {
		if key != SessionField {
			record[key] = r.PostForm.Get(key)
		}
	}
	if err := wd.Replace(record); err != nil {
		h.log.Warn("session no longer open", zap.String("session", id), zap.Error(err))
		h.drop(id)
		writeJSON(w, http.StatusGone, map[string]string{"error": "session closed"})
		return
	}

	result, err := wd.Submit(r.Context())
	html := wantsHTML(r)

	var (
		invalid *apperror.ValidationError
		spam    *apperror.SpamRejection
	)
	switch {
	case err == nil:
		h.drop(id)
		if html {
			h.renderSuccess(w, wd)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "Ok", "result": result})
	case errors.As(err, &invalid):
		if html {
			h.renderForm(w, http.StatusBadRequest, id, wd, record, invalid.Fields, "")
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": model.ErrorValidation, "errors": invalid.Fields})
	case errors.As(err, &spam):
		if html {
			h.renderForm(w, http.StatusBadRequest, id, wd, record, nil, spam.Message)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": spam.Kind, "error": spam.Message})
	case errors.Is(err, apperror.ErrSubmitInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		if html {
			h.renderForm(w, http.StatusBadGateway, id, wd, record, nil, "Failed to submit form")
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]any{"type": model.ErrorSubmission, "error": "Failed to submit form"})
	}
}

// Close hides and releases a session.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	id := r.PostForm.Get(SessionField)
	if wd, ok := h.lookup(id); ok {
		_ = wd.Hide()
		h.drop(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sessions returns the number of open sessions.
func (h *Handler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// lookup returns the widget of a live session. An expired session is
// released and reported as unknown.
func (h *Handler) lookup(id string) (*widget.Widget, bool) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok && h.expired(s) {
		delete(h.sessions, id)
		h.mu.Unlock()
		s.widget.Destroy()
		return nil, false
	}
	h.mu.Unlock()
	if !ok {
		return nil, false
	}
	return s.widget, true
}

func (h *Handler) expired(s *session) bool {
	return h.ttl > 0 && s.created.Before(h.now().Add(-h.ttl))
}

func (h *Handler) drop(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if ok {
		s.widget.Destroy()
	}
}

func (h *Handler) sweep() {
	h.mu.Lock()
	var expired []*session
	for id, s := range h.sessions {
		if h.expired(s) {
			expired = append(expired, s)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()
	for _, s := range expired {
		s.widget.Destroy()
	}
	if len(expired) > 0 {
		h.log.Debug("expired form sessions", zap.Int("count", len(expired)))
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, id string, wd *widget.Widget, values model.FormRecord, errs map[string]string, notice string) {
	body, err := render.Form(render.View{
		Config: wd.Config(),
		Action: "submit",
		Hidden: map[string]string{SessionField: id},
		Values: values,
		Errors: errs,
		Notice: notice,
	}, render.NewDocument())
	if err != nil {
		h.log.Error("failed to render form", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, body)
}

func (h *Handler) renderSuccess(w http.ResponseWriter, wd *widget.Widget) {
	body, err := render.Success(wd.Config(), render.NewDocument())
	if err != nil {
		h.log.Error("failed to render success", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// EnvironmentFrom derives the client environment from request headers. The
// embedding page may pass screen and tz query parameters.
func EnvironmentFrom(r *http.Request) model.Environment {
	env := model.Environment{
		UserAgent: r.UserAgent(),
		PageURL:   r.Referer(),
		ClientIP:  clientIP(r.RemoteAddr),
		Fingerprint: model.DeviceFingerprint{
			Screen:        r.URL.Query().Get("screen"),
			Timezone:      r.URL.Query().Get("tz"),
			Language:      primaryLanguage(r.Header.Get("Accept-Language")),
			Platform:      strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`),
			CookieEnabled: r.Header.Get("Cookie") != "",
		},
	}
	if env.PageURL == "" {
		env.PageURL = r.URL.String()
	}
	if dnt := r.Header.Get("DNT"); dnt != "" {
		env.Fingerprint.DoNotTrack = &dnt
	}
	return env
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.TrimSpace(first)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
