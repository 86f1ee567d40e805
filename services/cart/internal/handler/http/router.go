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
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/service"
)

// RouterConfig carries the HTTP concerns configured per deployment.
type RouterConfig struct {
	CORS      middleware.CORSConfig
	Heartbeat time.Duration
	// StopStreams, when closed, ends every open event stream.
	StopStreams <-chan struct{}
}

// NewRouter creates a chi router with all cart service routes registered.
func NewRouter(
	cartService *service.CartService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger, cfg.Heartbeat, cfg.StopStreams)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(CartIDFromHeader)
		r.Use(middleware.NoStore)

		// Long-lived stream: no compression or request timeout.
		r.Get("/events", cartHandler.Events)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(30 * time.Second))
			r.Use(ContentTypeJSON)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/count", cartHandler.Count)
			r.Post("/items", cartHandler.AddItem)
		})
	})

	return r
}
