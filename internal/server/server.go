// Package server provides the HTTP API and websocket notifications.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clients/alphavantage"
	"github.com/verdantlabs/esgboard/internal/database"
	"github.com/verdantlabs/esgboard/internal/events"
	"github.com/verdantlabs/esgboard/internal/modules/analysis"
	analysishandlers "github.com/verdantlabs/esgboard/internal/modules/analysis/handlers"
	"github.com/verdantlabs/esgboard/internal/modules/market"
	markethandlers "github.com/verdantlabs/esgboard/internal/modules/market/handlers"
)

// Config holds server configuration
type Config struct {
	Port         int
	Log          zerolog.Logger
	DB           *database.DB
	Analysis     *analysis.Service
	Market       *market.Repository
	Bus          *events.Bus
	AlphaVantage *alphavantage.Client
}

// Server wraps the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	hub    *Hub
	system *SystemHandlers
	cfg    Config
}

// New creates a new server instance
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log,
		db:     cfg.DB,
		hub:    NewHub(cfg.Bus, cfg.Log),
		system: NewSystemHandlers(cfg.DB, cfg.AlphaVantage, cfg.Log),
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ws", s.hub.HandleWebSocket)

	analysisH := analysishandlers.NewHandler(s.cfg.Analysis, s.log)
	marketH := markethandlers.NewHandler(s.cfg.Market, s.log)

	s.router.Route("/api", func(r chi.Router) {
		analysisH.RegisterRoutes(r)
		marketH.RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.system.HandleSystemStatus)
			r.Get("/database/stats", s.system.HandleDatabaseStats)
		})
	})
}

// loggingMiddleware logs each HTTP request
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

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.hub.Close()
	return s.server.Shutdown(ctx)
}
