// Package httpserver provides the HTTP REST API of the paper discovery service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/assistant"
	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/database"
	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/preferences"
)

// Resolver turns a user supplied identifier into paper metadata.
type Resolver interface {
	Resolve(ctx context.Context, input string) (*domain.Metadata, error)
}

// Catalog exposes the current catalog snapshot.
type Catalog interface {
	Snapshot() *catalog.Snapshot
}

// Submitter accepts user paper submissions.
type Submitter interface {
	Submit(ctx context.Context, req *catalog.SubmissionRequest) (*domain.Paper, error)
}

// Preferences manages per-user upvotes and reading lists.
type Preferences interface {
	ToggleUpvote(ctx context.Context, user, paperID string) (*preferences.UpvoteResult, error)
	Upvoted(ctx context.Context, user string) ([]string, error)
	ReadingList(ctx context.Context, user string) ([]*domain.Paper, error)
	AddToReadingList(ctx context.Context, user, paperID string) ([]*domain.Paper, error)
	RemoveFromReadingList(ctx context.Context, user string, index int) ([]*domain.Paper, error)
}

// Assistant answers chat messages about the catalog.
type Assistant interface {
	Reply(ctx context.Context, history []assistant.Turn, message string) string
}

// HealthChecker reports database health. *database.DB implements it.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// Deps are the collaborators behind the API. Health may be nil when the
// shared database is disabled.
type Deps struct {
	Resolver    Resolver
	Catalog     Catalog
	Submitter   Submitter
	Preferences Preferences
	Assistant   Assistant
	Health      HealthChecker
}

// Server is the HTTP REST API server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	deps         Deps
	maxBodyBytes int64
	logger       zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(cfg Config, deps Deps, logger zerolog.Logger) *Server {
	s := &Server{
		deps:         deps,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.With().Str("component", "http-server").Logger(),
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBodyBytes
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)
	r.Use(bodyLimitMiddleware(s.maxBodyBytes))

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(userIDMiddleware)

		r.Post("/resolve", s.resolvePaper)

		r.Get("/papers", s.listPapers)
		r.Get("/papers/{paperID}", s.getPaper)
		r.Post("/papers/{paperID}/upvote", s.toggleUpvote)
		r.Get("/categories", s.listCategories)
		r.Post("/submissions", s.submitPaper)

		r.Get("/upvotes", s.listUpvotes)
		r.Get("/reading-list", s.getReadingList)
		r.Post("/reading-list", s.addToReadingList)
		r.Delete("/reading-list/{index}", s.removeFromReadingList)

		r.Post("/assistant/chat", s.assistantChat)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "disabled"})
		return
	}
	// An unmigrated database is still live; readiness holds traffic instead.
	health := s.deps.Health.Health(r.Context())
	if health.Status != database.StatusUnhealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler reports ready once the catalog holds papers and the
// database, if configured, is healthy.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disabled"
	var storedPapers int64
	if s.deps.Health != nil {
		health := s.deps.Health.Health(r.Context())
		if health.Status != database.StatusHealthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":   "not_ready",
				"database": health.Status,
				"error":    health.Error,
			})
			return
		}
		dbStatus = health.Status
		storedPapers = health.StoredPapers
	}

	size := 0
	if s.deps.Catalog != nil {
		size = s.deps.Catalog.Snapshot().Len()
	}
	if size == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "not_ready",
			"database": dbStatus,
			"papers":   0,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ready",
		"database":      dbStatus,
		"papers":        size,
		"stored_papers": storedPapers,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
