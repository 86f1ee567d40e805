package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/health"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
	pkgkafka "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/kafka"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/middleware"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/tracing"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/config"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/engine/memory"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/event"
	handler "github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/handler/http"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/service"
)

// App wires together all dependencies and runs the search service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	refresher      *catalog.Refresher
	consumer       *pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	httpServer     *http.Server
	stopBackground context.CancelFunc
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	provider, prober, err := newProvider(cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}
	if !cfg.ProbeGalleries {
		prober = nil
	}

	store := catalog.NewStore()
	refreshCfg := catalog.RefresherConfig{Interval: cfg.RefreshInterval}
	if cfg.CatalogSource == config.SourceFile && cfg.WatchCatalog {
		refreshCfg.WatchPath = cfg.CatalogPath
	}
	refresher := catalog.NewRefresher(provider, store, prober, refreshCfg, logger)
	logger.Info("catalog provider initialized",
		slog.String("source", provider.Source()),
		slog.Duration("interval", cfg.RefreshInterval),
		slog.Bool("watch", refreshCfg.WatchPath != ""),
	)

	// Build the service layer.
	searchService := service.NewSearchService(memory.New(store), store, refresher, logger)

	// Optional Kafka consumer for catalog.imported events.
	var (
		consumer *pkgkafka.Consumer
		dlq      *pkgkafka.DLQProducer
	)
	if len(cfg.KafkaBrokers) > 0 {
		dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		eventConsumer := event.NewConsumer(refresher, logger)
		consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaGroupID,
			Topic:    event.TopicCatalogImported,
			MinBytes: 1,
			MaxBytes: 1e6,
		}, eventConsumer.Handle, logger).WithDeadLetter(dlq)
		logger.Info("kafka consumer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", event.TopicCatalogImported),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("catalog", health.MaxAge(store.LastUpdated, cfg.CatalogMaxAge))
	if consumer != nil {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	limiter := middleware.NewRateLimiter(bgCtx, cfg.RateLimit, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins
	corsCfg.ExposedHeaders = append(corsCfg.ExposedHeaders, handler.CatalogVersionHeader)

	router := handler.NewRouter(searchService, healthHandler, handler.RouterConfig{
		CORS:        corsCfg,
		RateLimiter: limiter,
		CacheMaxAge: cfg.CacheMaxAge,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		refresher:      refresher,
		consumer:       consumer,
		dlq:            dlq,
		httpServer:     httpServer,
		stopBackground: stopBackground,
		shutdownTracer: shutdownTracer,
	}, nil
}

// newProvider builds the catalog provider and matching gallery prober for
// the configured source.
func newProvider(cfg *config.Config, logger *slog.Logger) (catalog.Provider, catalog.Prober, error) {
	if cfg.CatalogSource == config.SourceFile {
		return catalog.NewFileProvider(cfg.CatalogPath), catalog.NewFSProber(cfg.PublicDir), nil
	}

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg.HTTPClient),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	provider, err := catalog.NewHTTPProvider(cfg.CatalogURL, client)
	if err != nil {
		return nil, nil, err
	}

	u, err := url.Parse(cfg.CatalogURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse catalog url: %w", err)
	}
	site := u.Scheme + "://" + u.Host
	return provider, catalog.NewHTTPProber(site, client), nil
}

// Run starts the HTTP server, the catalog refresher and the Kafka consumer,
// blocking until the context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.refresher.Run(gctx)
	})

	if a.consumer != nil {
		g.Go(func() error {
			if err := a.consumer.Start(gctx); err != nil {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.stopBackground()

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
