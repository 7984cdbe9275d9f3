package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mergington/activities/internal/config"
	"github.com/mergington/activities/internal/metrics"
	"github.com/mergington/activities/internal/roster"
	"github.com/redis/go-redis/v9"
)

// Server represents the API server
type Server struct {
	config   *config.Config
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
	recorder *metrics.Recorder

	// Optional change feed backends, reported by the health checker
	redisClient *redis.Client
	auditDB     *sql.DB

	startTime time.Time
}

// NewServer creates a new API server around an already seeded registry.
// recorder may be nil, in which case nothing is instrumented and /metrics
// is not served.
func NewServer(cfg *config.Config, registry *roster.Registry, recorder *metrics.Recorder) *Server {
	handlers := NewHandlers(registry, recorder)
	router := SetupRoutes(handlers, cfg.CORS)

	if recorder != nil && cfg.Metrics.IsEnabled() {
		router.Method(http.MethodGet, cfg.Metrics.Path, recorder.Handler())
	}

	return &Server{
		config:    cfg,
		handlers:  handlers,
		router:    router,
		recorder:  recorder,
		startTime: time.Now(),
	}
}

// SetRedisClient records the Redis client backing the change feed.
func (s *Server) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// SetAuditDB records the PostgreSQL pool backing the audit sink.
func (s *Server) SetAuditDB(db *sql.DB) {
	s.auditDB = db
}

// RegisterHealthRoutes mounts /health, /health/live and /health/ready. Call
// it after the Set* methods so the checker sees every dependency.
func (s *Server) RegisterHealthRoutes() {
	hc := NewHealthChecker(s.handlers.registry, s.redisClient, s.auditDB)
	hc.startTime = s.startTime
	s.router.Get("/health", hc.HandleHealth)
	s.router.Get("/health/live", hc.HandleLiveness)
	s.router.Get("/health/ready", hc.HandleReadiness)
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.router
}
