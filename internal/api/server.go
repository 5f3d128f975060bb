// Package api provides the HTTP API server and handlers for the MediaLog engine.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/medialogapp/medialog-server/internal/http/response"
	"github.com/medialogapp/medialog-server/internal/ratelimit"
	"github.com/medialogapp/medialog-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	library      *service.LibraryService
	progress     *service.ProgressService
	achievements *service.AchievementService
	limiter      *ratelimit.KeyedRateLimiter
	router       *chi.Mux
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(library *service.LibraryService, progress *service.ProgressService, achievements *service.AchievementService, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		library:      library,
		progress:     progress,
		achievements: achievements,
		limiter:      limiter,
		router:       chi.NewRouter(),
		logger:       logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1. User identity comes from the session layer in front of this
	// service; the X-User-ID header carries it through.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireUser)

		r.Route("/list", func(r chi.Router) {
			r.Get("/", s.handleGetUserList)
			r.With(s.rateLimit).Post("/", s.handleAddToList)
			r.With(s.rateLimit).Patch("/{id}", s.handleUpdateListItem)
			r.With(s.rateLimit).Delete("/{id}", s.handleRemoveFromList)
		})

		r.Route("/progress", func(r chi.Router) {
			r.With(s.rateLimit).Put("/", s.handleUpdateProgress)
			r.Get("/{type}/{mediaID}", s.handleGetProgress)
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", s.handleGetUserAchievements)
			r.Get("/unlocked", s.handleCheckAchievements)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
