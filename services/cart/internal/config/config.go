package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/config"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/database"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/tracing"
)

// Config holds all configuration for the cart service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"CART_HTTP_PORT" envDefault:"8003"`
	AllowedOrigins []string      `env:"CART_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	StreamPing     time.Duration `env:"CART_STREAM_PING" envDefault:"25s"`

	// Redis
	Redis database.RedisConfig `envPrefix:"REDIS_"`

	// CartTTL is how long an untouched cart survives (default: 30 days).
	CartTTL time.Duration `env:"CART_TTL" envDefault:"720h"`

	Tracing tracing.Config `envPrefix:"TRACING_"`

	// Kafka. Empty disables cart domain events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = "cart-service"
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.CartTTL < 0 {
		return fmt.Errorf("CART_TTL must not be negative")
	}
	if c.StreamPing <= 0 {
		return fmt.Errorf("CART_STREAM_PING must be positive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.Tracing.SampleRate)
	}
	return nil
}
