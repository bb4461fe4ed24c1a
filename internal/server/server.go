// Package server provides the HTTP server and routing for the sales tracker.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/backup"
	"github.com/fahimtalukderraj-lang/salesapp/internal/config"
	"github.com/fahimtalukderraj-lang/salesapp/internal/database"
	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/export"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/reports"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/settings"
)

// Config holds server configuration
type Config struct {
	Port        int
	Log         zerolog.Logger
	DB          *database.DB
	Config      *config.Config
	Bus         *events.Bus
	EntriesRepo *entries.Repository
	Backups     *backup.Service
	DevMode     bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	cfg            *config.Config
	bus            *events.Bus
	entriesRepo    *entries.Repository
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		db:          cfg.DB,
		cfg:         cfg.Config,
		bus:         cfg.Bus,
		entriesRepo: cfg.EntriesRepo,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.DB, cfg.EntriesRepo, cfg.Backups)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg.Log)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(log zerolog.Logger) {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Event stream (websocket) - registered before module routes
		wsHandler := NewEventsWSHandler(s.bus, log)
		r.Get("/events/ws", wsHandler.ServeHTTP)

		// Module handlers register their own subtrees
		entriesHandler := entries.NewHandler(s.entriesRepo, s.bus, log)
		entriesHandler.RegisterRoutes(r)

		reportsHandler := reports.NewHandler(s.entriesRepo, log)
		reportsHandler.RegisterRoutes(r)

		exportHandler := export.NewHandler(s.entriesRepo, log)
		exportHandler.RegisterRoutes(r)

		settingsHandler := settings.NewHandler(s.cfg, s.entriesRepo, s.bus, log)
		settingsHandler.RegisterRoutes(r)

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)
		})

		// Backups
		r.Get("/backups", s.systemHandlers.HandleListBackups)

		// Manual job triggers
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/backup", s.systemHandlers.HandleTriggerBackup)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth responds to health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
