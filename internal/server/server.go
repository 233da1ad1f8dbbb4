// Package server provides the HTTP server and routing for the analytics API.
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

	"github.com/aristath/mvt-analytics/internal/config"
	"github.com/aristath/mvt-analytics/internal/di"
	analyseshandlers "github.com/aristath/mvt-analytics/internal/modules/analyses/handlers"
	funnelhandlers "github.com/aristath/mvt-analytics/internal/modules/funnel/handlers"
	markethandlers "github.com/aristath/mvt-analytics/internal/modules/market/handlers"
	optimizationhandlers "github.com/aristath/mvt-analytics/internal/modules/optimization/handlers"
	projectshandlers "github.com/aristath/mvt-analytics/internal/modules/projects/handlers"
	realtimehandlers "github.com/aristath/mvt-analytics/internal/modules/realtime/handlers"
	reportshandlers "github.com/aristath/mvt-analytics/internal/modules/reports/handlers"
)

// Config holds server dependencies
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: NewSystemHandlers(cfg.Container, cfg.Config.DataDir, cfg.Log),
	}

	s.setupMiddleware()
	s.setupRoutes()

	// No WriteTimeout: event streams stay open. Handlers are bounded by the
	// timeout middleware instead.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", realtimehandlers.SessionHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5, "application/json", "text/csv"))
	}
}

func (s *Server) setupRoutes() {
	c := s.container

	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Long-lived streams are registered outside the timeout group
		stream := NewEventsStreamHandler(c.EventBus, s.log)
		r.Get("/events/stream", stream.ServeHTTP)
		ws := NewEventsWebSocketHandler(c.EventBus, s.cfg.CORSOrigins, s.log)
		r.Get("/events/ws", ws.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			s.systemHandlers.RegisterRoutes(r)

			projects := projectshandlers.NewHandler(c.ProjectRepo, c.EventManager, s.log)
			analysesHandler := analyseshandlers.NewHandler(c.AnalysisService, c.EventManager, s.log)
			projects.Nest(analysesHandler.RegisterProjectRoutes)
			projects.RegisterRoutes(r)
			analysesHandler.RegisterRoutes(r)

			optimizationhandlers.NewHandler(
				c.OptimizationEngine,
				c.OptimizationRepo,
				c.ProjectRepo,
				c.Catalog,
				c.EventManager,
				s.log,
			).RegisterRoutes(r)

			markethandlers.NewHandler(
				c.Predictor,
				c.ComprehensiveAnalyzer,
				c.SeasonalAnalyzer,
				c.Catalog,
				s.log,
			).RegisterRoutes(r)

			funnelhandlers.NewHandler(
				c.Simulator,
				c.SimulationRepo,
				c.ProjectRepo,
				c.Catalog,
				c.EventManager,
				s.log,
			).RegisterRoutes(r)

			realtimehandlers.NewHandler(c.RealtimeAnalyzer, c.EventManager, s.log).RegisterRoutes(r)
			reportshandlers.NewHandler(c.ReportService, c.EventManager, s.log).RegisterRoutes(r)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
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

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event := s.log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			event = s.log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
