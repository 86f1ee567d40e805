package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/database"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/health"
	pkgkafka "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/kafka"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/middleware"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/tracing"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/config"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/event"
	handler "github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/handler/http"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/notify"
	redisrepo "github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/repository/redis"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/service"
)

// slowRedisCommand is the latency above which Redis commands are logged.
const slowRedisCommand = 100 * time.Millisecond

// App wires together all dependencies and runs the cart service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Initialize Redis client.
	database.SetSlowCommandLogging(slowRedisCommand, logger)
	rdb, err := database.NewRedisClient(connectCtx, cfg.Redis)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if err := prometheus.Register(database.NewPoolStatsCollector(rdb, "cart")); err != nil {
		logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.Redis.Addr()),
		slog.Int("db", cfg.Redis.DB),
	)

	// Kafka producer is optional; without brokers events are dropped.
	var (
		producer  *pkgkafka.Producer
		publisher pkgkafka.Publisher = pkgkafka.NoopPublisher{}
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	repo := redisrepo.NewCartRepository(rdb, cfg.CartTTL)
	notifier := notify.NewNotifier(rdb, logger)
	eventProducer := event.NewProducer(publisher, logger)
	cartService := service.NewCartService(repo, notifier, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	// Event streams never go idle, so they are closed as soon as shutdown
	// begins rather than holding it until the deadline.
	stopStreams := make(chan struct{})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	router := handler.NewRouter(cartService, healthHandler, handler.RouterConfig{
		CORS:        corsCfg,
		Heartbeat:   cfg.StreamPing,
		StopStreams: stopStreams,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	httpServer.RegisterOnShutdown(sync.OnceFunc(func() { close(stopStreams) }))

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
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

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
