package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/health"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/middleware"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/service"
)

// RouterConfig carries the HTTP concerns configured per deployment.
type RouterConfig struct {
	CORS        middleware.CORSConfig
	RateLimiter *middleware.RateLimiter
	CacheMaxAge time.Duration
}

// NewRouter creates a chi router with all search service routes registered.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("search"))
	r.Use(middleware.Tracing("search"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	searchHandler := NewSearchHandler(searchService, logger)

	r.Route("/api/v1/search", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		r.Use(middleware.NoStore)
		r.Get("/", searchHandler.Search)
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))
			r.Get("/products", searchHandler.ListProducts)
			r.Get("/products/{id}", searchHandler.GetProduct)
			r.Get("/categories", searchHandler.Categories)
			r.Get("/featured", searchHandler.Featured)
		})
		r.Post("/refresh", searchHandler.Refresh)
	})

	return r
}
