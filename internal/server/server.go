package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copyleftdev/swarmlab/internal/config"
	"github.com/copyleftdev/swarmlab/internal/logging"
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/sandbox"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// ErrSessionLimit is returned when the server already holds the maximum
// number of sessions.
var ErrSessionLimit = errors.New("session limit reached")

// maxStepsPerRequest bounds the generations a single request may run.
const maxStepsPerRequest = 10000

// SessionState is a sandbox session registered with the server.
type SessionState struct {
	ID        string
	Session   *sandbox.Session
	CreatedAt time.Time
}

// Server implements the HTTP and JSON-RPC server for sandbox sessions.
// Sessions are created on demand, addressed by UUID and live until they are
// deleted or the server closes.
type Server struct {
	cfg     *config.Config
	logger  Logger
	metrics *sandbox.Metrics

	sessions   map[string]*SessionState
	sessionsMu sync.RWMutex // Protects the sessions map
}

// NewServer creates a new server instance with the given config and logger.
// metrics may be nil.
func NewServer(cfg *config.Config, logger Logger, metrics *sandbox.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]*SessionState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/landscapes/{id}/grid", s.handleLandscapeGrid)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/step", s.handleStep)
			r.Post("/reset", s.handleReset)
			r.Put("/comparison", s.handleComparison)
			r.Put("/algorithm", s.handleSwitchAlgorithm)
			r.Put("/landscape", s.handleSwitchLandscape)
			r.Patch("/params", s.handleUpdateParams)
			r.Put("/settings", s.handleConfigure)
			r.Get("/runs", s.handleRuns)
			r.Get("/heatmap", s.handleHeatmap)
			r.Get("/export.csv", s.handleExportCSV)
		})
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// createSession builds a session from the configured defaults overlaid
// with the optional JSON settings in body.
// invalidSettings reports an unknown algorithm or landscape named in a
// settings document as a bad argument, keeping not-found for missing
// sessions.
func invalidSettings(err error) error {
	if errors.Is(err, optimization.ErrNotFound) {
		return optimization.InvalidArgumentf("invalid settings: %v", err).WithComponent("server")
	}
	return err
}

func (s *Server) createSession(body []byte) (*SessionState, error) {
	settings := s.cfg.SandboxSettings()
	if len(body) > 0 {
		if err := json.Unmarshal(body, &settings); err != nil {
			return nil, optimization.InvalidArgumentf("invalid settings: %v", err).WithComponent("server")
		}
	}

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if len(s.sessions) >= s.cfg.Sandbox.MaxSessions {
		return nil, ErrSessionLimit
	}

	id := uuid.NewString()
	logger := logging.NewZapLogger(s.logger.WithFields(map[string]interface{}{
		"session_id": id,
	}))
	sess, err := sandbox.New(settings, sandbox.WithLogger(logger), sandbox.WithMetrics(s.metrics))
	if err != nil {
		return nil, invalidSettings(err)
	}

	state := &SessionState{ID: id, Session: sess, CreatedAt: time.Now()}
	s.sessions[id] = state
	s.metrics.SessionOpened()

	s.logger.Info("Session created", map[string]interface{}{
		"session_id": id,
		"algorithm":  settings.Algorithm,
		"landscape":  settings.Landscape,
		"seed":       settings.Seed,
	})
	return state, nil
}

func (s *Server) session(id string) (*SessionState, error) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, optimization.NotFoundf("session %q not found", id).WithComponent("server")
	}
	return state, nil
}

func (s *Server) deleteSession(id string) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return optimization.NotFoundf("session %q not found", id).WithComponent("server")
	}
	delete(s.sessions, id)
	s.metrics.SessionClosed()

	s.logger.Info("Session deleted", map[string]interface{}{
		"session_id": id,
	})
	return nil
}

// step runs up to n generations on a session. Reaching the generation
// limit after at least one generation is not an error; the caller sees it
// through limitReached.
func (s *Server) step(ctx context.Context, state *SessionState, n int) (stats []sandbox.GenerationStats, limitReached bool, err error) {
	if n < 1 || n > maxStepsPerRequest {
		return nil, false, optimization.InvalidArgumentf("steps must be in 1..%d, got %d", maxStepsPerRequest, n).WithComponent("server")
	}
	stats, err = state.Session.Run(ctx, n)
	if errors.Is(err, sandbox.ErrGenerationLimit) && len(stats) > 0 {
		return stats, true, nil
	}
	return stats, false, err
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// Close cleans up resources
func (s *Server) Close() error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	for id := range s.sessions {
		delete(s.sessions, id)
		s.metrics.SessionClosed()
	}
	return nil
}

// statusFor maps an error to the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, optimization.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, optimization.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sandbox.ErrGenerationLimit):
		return http.StatusConflict
	case errors.Is(err, ErrSessionLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondWithHTTPError writes {"error": ...} with the mapped status.
func (s *Server) respondWithHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("Request failed")
	}
	respondJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}
