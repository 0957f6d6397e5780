// Package http exposes the SMS webhook, health and metrics endpoints over chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/metrics"
	"github.com/aretw0/intake/pkg/inbound"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxFormBytes caps the webhook request body.
const maxFormBytes = 64 << 10

// Submitter accepts inbound messages for asynchronous processing.
type Submitter interface {
	Submit(msg inbound.Message) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// WebhookResponse is the body returned for an accepted message.
type WebhookResponse struct {
	Status   string  `json:"status"`
	MediaURL *string `json:"media_url"`
	Text     string  `json:"text"`
}

// Server routes webhook calls into the conversation queue.
type Server struct {
	queue   Submitter
	logger  *slog.Logger
	metrics *metrics.Metrics
	checks  map[string]HealthCheck
}

type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics counts inbound messages and mounts GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHealthCheck adds a named dependency check to GET /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		if check != nil {
			s.checks[name] = check
		}
	}
}

// NewServer creates the server.
func NewServer(queue Submitter, opts ...Option) *Server {
	s := &Server{
		queue:  queue,
		logger: logging.NewNop(),
		checks: make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/webhook", s.Webhook)
	r.Get("/health", s.Health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// NewHandler is a shorthand for NewServer(queue, opts...).Handler().
func NewHandler(queue Submitter, opts ...Option) http.Handler {
	return NewServer(queue, opts...).Handler()
}

// Webhook handles POST /webhook. The message is queued and acknowledged
// before the conversation step runs.
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("Webhook: invalid form body", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	msg, err := inbound.FromForm(r.PostForm)
	if err != nil {
		if errors.Is(err, inbound.ErrMissingSender) {
			writeError(w, http.StatusBadRequest, "Missing 'from' field")
			return
		}
		s.logger.Warn("Webhook: rejected message", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.queue.Submit(msg); err != nil {
		s.logger.Error("Webhook: failed to enqueue message", logging.Phone(msg.From), "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if s.metrics != nil {
		s.metrics.InboundMessages.Inc()
	}
	s.logger.Debug("Webhook: message queued", logging.Phone(msg.From), "has_media", msg.MediaURL != "")

	resp := WebhookResponse{Status: "received", Text: msg.Text}
	if msg.MediaURL != "" {
		resp.MediaURL = &msg.MediaURL
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", "check", name, "err", err)
			body[name] = err.Error()
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}
	writeJSON(w, status, body)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
