// Package api provides the HTTP API server and handlers for the TickStack application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tickstack/tickstack-server/internal/backup"
	"github.com/tickstack/tickstack-server/internal/http/response"
	"github.com/tickstack/tickstack-server/internal/identity"
	"github.com/tickstack/tickstack-server/internal/ratelimit"
	"github.com/tickstack/tickstack-server/internal/service"
	"github.com/tickstack/tickstack-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	checklists *service.ChecklistService
	items      *service.ItemService
	tokens     *identity.TokenService
	validator  *validation.Validator
	limiter    *ratelimit.KeyedRateLimiter
	stream     *StreamHandler
	backups    *backup.Service

	// ownerID is the configured principal of this single-user deployment;
	// the token endpoint only ever mints tokens for it.
	ownerID string

	router *chi.Mux
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	checklists *service.ChecklistService,
	items *service.ItemService,
	tokens *identity.TokenService,
	validator *validation.Validator,
	limiter *ratelimit.KeyedRateLimiter,
	stream *StreamHandler,
	backups *backup.Service,
	ownerID string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		checklists: checklists,
		items:      items,
		tokens:     tokens,
		validator:  validator,
		limiter:    limiter,
		stream:     stream,
		backups:    backups,
		ownerID:    ownerID,
		router:     chi.NewRouter(),
		logger:     logger,
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
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Post("/auth/token", s.handleIssueToken)

		// Everything else requires a verified principal.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Use(s.rateLimitByPrincipal)

			// ID reservation.
			r.Post("/ids/checklists", s.handleNextChecklistID)
			r.Post("/ids/items", s.handleNextItemID)

			// Checklists.
			r.Route("/checklists", func(r chi.Router) {
				r.Get("/", s.handleListChecklists)
				r.Get("/{listID}", s.handleGetChecklist)
				r.Put("/{listID}", s.handleSaveChecklist)
				r.Delete("/{listID}", s.handleDeleteChecklist)

				// Items of one checklist.
				r.Route("/{listID}/items", func(r chi.Router) {
					r.Get("/", s.handleListItems)
					r.Get("/{itemID}", s.handleGetItem)
					r.Put("/{itemID}", s.handleSaveItem)
					r.Delete("/{itemID}", s.handleDeleteItem)
				})
			})

			// Database snapshots.
			r.Route("/backups", func(r chi.Router) {
				r.Get("/", s.handleListBackups)
				r.Post("/", s.handleCreateBackup)
				r.Get("/{backupID}", s.handleGetBackup)
				r.Delete("/{backupID}", s.handleDeleteBackup)
			})

			// Live change stream.
			r.Get("/stream", s.stream.ServeHTTP)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
