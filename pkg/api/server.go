package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/internal/aggregation"
	"github.com/nmeo-op/palm-engine/internal/persistence"
	"github.com/nmeo-op/palm-engine/internal/scenario"
	"github.com/nmeo-op/palm-engine/internal/timeseries"
	"github.com/nmeo-op/palm-engine/pkg/api/handlers"
	"github.com/nmeo-op/palm-engine/pkg/api/middleware"
	"github.com/nmeo-op/palm-engine/pkg/audit"
	"github.com/nmeo-op/palm-engine/pkg/config"
)

// Server represents the HTTP API server
type Server struct {
	config  *config.Config
	router  *chi.Mux
	server  *http.Server
	store   *timeseries.Store
	backend persistence.Store
}

// Deps bundles the collaborators the server routes to
type Deps struct {
	Store      *timeseries.Store
	Backend    persistence.Store
	ChangeLog  *audit.Log
	Aggregator *aggregation.Aggregator
	Scenario   *scenario.Client
}

// New creates a new API server
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		store:   deps.Store,
		backend: deps.Backend,
	}

	s.setupMiddleware()
	s.setupRoutes(deps)

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)

	// generous timeout: Monte-Carlo proxying can take a while
	s.router.Use(chimiddleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(s.config.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes(deps Deps) {
	health := handlers.NewHealthHandler(deps.Backend, deps.Scenario)
	s.router.Get("/health", health.Handle)
	s.router.Handle("/metrics", promhttp.Handler())

	dashboard := handlers.NewDashboardHandler(deps.Aggregator)
	admin := handlers.NewAdminHandler(deps.Store, deps.ChangeLog)
	exports := handlers.NewExportHandler(deps.Store, deps.ChangeLog)
	scenarios := handlers.NewScenarioHandler(deps.Scenario, s.config.Policy)

	s.router.Route("/api", func(r chi.Router) {
		// dashboard read paths
		r.Get("/prices", dashboard.PriceCards)
		r.Get("/prices/years", dashboard.Years)
		r.Get("/seasonal", dashboard.Seasonal)
		r.Get("/coverage", dashboard.Coverage)
		r.Get("/regions", dashboard.Regions)
		r.Get("/progress", dashboard.Progress)

		// admin CRUD
		r.Route("/admin", func(r chi.Router) {
			r.Post("/prices", admin.UpsertMonth)
			r.Delete("/prices", admin.DeleteMonth)
			r.Post("/years", admin.UpsertYear)
			r.Post("/years/reorder", admin.ReorderYears)
			r.Put("/regions", admin.UpsertRegion)
			r.Get("/changelog", admin.ChangeLog)
			r.Post("/import", admin.Import)
			r.Post("/reset", admin.Reset)
			r.Get("/export", exports.Handle)
		})

		// external simulation proxies
		r.Route("/scenario", func(r chi.Router) {
			r.Post("/tariff", scenarios.Tariff)
			r.Post("/montecarlo", scenarios.MonteCarlo)
			r.Post("/trade", scenarios.Trade)
		})
	})
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("Starting HTTP server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// flush any debounced snapshot before releasing the backend
	if err := s.store.Close(); err != nil {
		log.WithError(err).Error("Final snapshot flush failed")
	}

	log.Info("Server exited")
	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
