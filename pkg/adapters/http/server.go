package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/internal/presentation/graph"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/runner"
	"github.com/aretw0/switchboard/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is what the HTTP surface needs from the core.
type Engine interface {
	ports.TurnEngine
	Sessions(ctx context.Context) ([]domain.SessionID, error)
	Forget(ctx context.Context, id domain.SessionID) error
}

// Server serves the HTTP API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	metrics http.Handler
	version string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts a Prometheus handler on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// TurnRequest is the body of POST /turns.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s.Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/turns", s.RunTurn)
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{id}", s.GetSession)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunTurn handles POST /turns. A turn that lands on the fail branch is still
// a 200: the failure is part of the returned state.
func (s *Server) RunTurn(w http.ResponseWriter, r *http.Request) {
	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	input, err := runner.SanitizeInput(body.UserInput)
	if err != nil {
		s.logger.Warn("RunTurn: input rejected", "err", err, "size", len(body.UserInput))
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	state, err := s.Engine.Turn(r.Context(), body.SessionID, input)
	if err != nil {
		s.logger.Error("RunTurn failed", "session_id", body.SessionID, "err", err)
		s.writeError(w, statusFor(err), err)
		return
	}

	if data, err := json.Marshal(state); err == nil {
		s.Streams.Broadcast(body.SessionID, string(data))
	}
	s.writeJSON(w, http.StatusOK, state)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Sessions(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if ids == nil {
		ids = []domain.SessionID{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "id"))
	snap, err := s.Engine.Session(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "id"))
	if err := s.Engine.Forget(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph. ?format=mermaid returns a flowchart instead of JSON.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	nodes := s.Engine.Inspect()
	if strings.EqualFold(r.URL.Query().Get("format"), "mermaid") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateMermaid(nodes, nil)))
		return
	}
	s.writeJSON(w, http.StatusOK, nodes)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "switchboard-http",
		"version": strings.TrimSpace(s.version),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrAdminUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if kind := domain.FailureKind(err); kind != "Unknown" {
		resp.Kind = kind
	}
	s.writeJSON(w, status, resp)
}
