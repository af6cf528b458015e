// Package api wires the HTTP surface of the service: competitor
// registration, crawl triggering, analyzer runs and insight reads.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/api/handlers"
	"github.com/rivalscope/rivalscope/internal/api/middleware"
	"github.com/rivalscope/rivalscope/internal/observability"
	"github.com/rivalscope/rivalscope/internal/repository/postgres"
	"github.com/rivalscope/rivalscope/internal/services/crawler"
	"github.com/rivalscope/rivalscope/internal/services/intel"
	"github.com/rivalscope/rivalscope/internal/services/profile"
	"github.com/rivalscope/rivalscope/internal/services/seo"
	"github.com/rivalscope/rivalscope/pkg/httputil"
)

// RouterConfig contains configuration for the router
type RouterConfig struct {
	DB         *postgres.DB
	Repos      *postgres.Repositories
	Trigger    *crawler.Trigger
	Intel      *intel.Service
	Profiles   *profile.Service
	SEO        *seo.Service
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	EnableCORS bool
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)
	r.Use(cfg.Metrics.HTTPMiddleware)
	r.Use(chimw.Timeout(60 * time.Second))

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := cfg.DB.Health(req.Context()); err != nil {
			httputil.JSONError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable", nil)
			return
		}
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", cfg.Metrics.Handler())

	competitorHandler := handlers.NewCompetitorHandler(cfg.Repos.Competitors, cfg.Repos.Changes, cfg.Logger)
	crawlHandler := handlers.NewCrawlHandler(cfg.Trigger, cfg.Repos.CrawlJobs, cfg.Logger)
	insightHandler := handlers.NewInsightHandler(cfg.Intel, cfg.Profiles, cfg.SEO, cfg.Repos.Insights, cfg.Repos.SEOSnapshots, cfg.Metrics, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/competitors", func(r chi.Router) {
			r.Get("/", competitorHandler.List)
			r.Post("/", competitorHandler.Create)
			r.Get("/{id}", competitorHandler.Get)
			r.Get("/{id}/changes", competitorHandler.ListChanges)
			r.Post("/{id}/crawl", crawlHandler.Enqueue)
			r.Post("/{id}/report", insightHandler.GenerateReport)
			r.Post("/{id}/baseline", insightHandler.GenerateBaseline)
			r.Post("/{id}/strategic", insightHandler.GenerateStrategic)
			r.Post("/{id}/seo", insightHandler.GenerateSEO)
			r.Get("/{id}/seo/gap/{peerID}", insightHandler.SEOGap)
			r.Get("/{id}/insights/{kind}", insightHandler.LatestInsight)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/{id}", crawlHandler.Get)
		})
	})

	return r
}
