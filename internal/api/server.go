// Package api provides HTTP API server functionality.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/graaaaa/teamstats/internal/app"
)

// Server represents the HTTP API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger

	// Use case dependencies
	health app.HealthUsecase
	teams  app.TeamsUsecase

	limiter *RateLimiter
	cors    CORSConfig
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTeamsUsecase sets the teams use case.
func WithTeamsUsecase(teams app.TeamsUsecase) ServerOption {
	return func(s *Server) { s.teams = teams }
}

// WithLogger sets the logger used for access and error logs.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimiter enables per-IP rate limiting.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) { s.limiter = rl }
}

// WithCORS allows cross-origin reads from the given origins.
func WithCORS(cfg CORSConfig) ServerOption {
	return func(s *Server) { s.cors = cfg }
}

// NewServer creates a new API server with the given dependencies.
func NewServer(addr string, health app.HealthUsecase, opts ...ServerOption) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:    mux,
		logger: slog.Default(),
		health: health,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	return s
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	if len(s.cors.AllowedOrigins) > 0 {
		h = corsMiddleware(s.cors)(h)
	}
	h = securityHeadersMiddleware(h)
	h = accessLogMiddleware(s.logger)(h)
	h = requestIDMiddleware(h)
	return h
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	if s.teams != nil {
		s.mux.HandleFunc("GET /teams", s.handleTeams)
		s.mux.HandleFunc("GET /teams/records", s.handleRecords)
		s.mux.HandleFunc("GET /teams/stats", s.handleStats)
	}
}

// handleRoot answers GET / with a fixed greeting.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Hello World!"))
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.health.Handle(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "", err)
		return
	}
	status := http.StatusOK
	if result.Status != app.StatusOK {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, r, status, result)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
