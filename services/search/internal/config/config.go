package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/config"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/middleware"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/tracing"
)

// Catalog sources.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"SEARCH_HTTP_PORT" envDefault:"8010"`
	AllowedOrigins []string      `env:"SEARCH_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CacheMaxAge    time.Duration `env:"SEARCH_CACHE_MAX_AGE" envDefault:"5s"`

	// Catalog provider. With the file source the catalog file is also
	// watched for changes.
	CatalogSource   string        `env:"CATALOG_SOURCE" envDefault:"file"`
	CatalogPath     string        `env:"CATALOG_PATH" envDefault:"public/data/products.json"`
	CatalogURL      string        `env:"CATALOG_URL"`
	PublicDir       string        `env:"PUBLIC_DIR" envDefault:"public"`
	RefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"10s"`
	WatchCatalog    bool          `env:"CATALOG_WATCH" envDefault:"true"`
	CatalogMaxAge   time.Duration `env:"CATALOG_MAX_AGE" envDefault:"5m"`
	ProbeGalleries  bool          `env:"CATALOG_PROBE_GALLERIES" envDefault:"true"`

	HTTPClient httpclient.Config          `envPrefix:"CATALOG_HTTP_"`
	RateLimit  middleware.RateLimitConfig `envPrefix:"SEARCH_RATE_LIMIT_"`
	Tracing    tracing.Config             `envPrefix:"TRACING_"`

	// Kafka. Empty disables the catalog.imported consumer.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaGroupID string   `env:"SEARCH_KAFKA_GROUP_ID" envDefault:"search-service"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = "search-service"
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CatalogSource {
	case SourceFile:
		if c.CatalogPath == "" {
			return fmt.Errorf("CATALOG_PATH is required for the file source")
		}
	case SourceHTTP:
		if c.CatalogURL == "" {
			return fmt.Errorf("CATALOG_URL is required for the http source")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", SourceFile, SourceHTTP, c.CatalogSource)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must not be negative")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_RPS must be positive and SEARCH_RATE_LIMIT_BURST at least 1")
	}
	if _, err := middleware.ParseTrustedProxies(c.RateLimit.TrustedProxies); err != nil {
		return fmt.Errorf("SEARCH_RATE_LIMIT_TRUSTED_PROXIES: %w", err)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.Tracing.SampleRate)
	}
	return nil
}
