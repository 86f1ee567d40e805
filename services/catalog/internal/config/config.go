package config

import (
	"fmt"
	"path/filepath"
	"time"

	pkgconfig "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/config"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/images"
)

// EnvPrefix namespaces every catalogctl setting.
const EnvPrefix = "CATALOG_"

// Storage backends for published images.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all configuration for catalogctl. Every key is read with the
// CATALOG_ prefix, e.g. CATALOG_PUBLIC_DIR.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PublicDir is the storefront's static root.
	PublicDir string `env:"PUBLIC_DIR" envDefault:"public"`
	// Output defaults to <PublicDir>/data/products.json.
	Output string `env:"OUTPUT"`
	// ImportsDir receives one timestamped directory per import that copies images.
	ImportsDir string `env:"IMPORTS_DIR" envDefault:"data/imports"`

	Storage string            `env:"STORAGE" envDefault:"local"`
	S3      images.S3Config   `envPrefix:"S3_"`
	HTTP    httpclient.Config `envPrefix:"IMAGE_HTTP_"`

	DownloadConcurrency int           `env:"DOWNLOAD_CONCURRENCY" envDefault:"8"`
	WatchInterval       time.Duration `env:"WATCH_INTERVAL" envDefault:"2m"`

	// Kafka. Empty disables catalog.imported events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// Load reads configuration from CATALOG_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithPrefix(cfg, EnvPrefix); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OutputPath is where products.json is written.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.PublicDir, "data", "products.json")
}

// ImagesDir is the storefront's local image directory.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.PublicDir, "data", "images")
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	switch c.Storage {
	case StorageLocal:
	case StorageS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("CATALOG_S3_BUCKET is required when CATALOG_STORAGE=s3")
		}
	default:
		return fmt.Errorf("invalid CATALOG_STORAGE %q (want local or s3)", c.Storage)
	}
	if c.DownloadConcurrency < 1 {
		return fmt.Errorf("CATALOG_DOWNLOAD_CONCURRENCY must be at least 1, got %d", c.DownloadConcurrency)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("CATALOG_WATCH_INTERVAL must be positive")
	}
	return nil
}
