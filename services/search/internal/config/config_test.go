package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, SourceFile, cfg.CatalogSource)
	assert.Equal(t, "public/data/products.json", cfg.CatalogPath)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
	assert.True(t, cfg.WatchCatalog)
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, 2, cfg.HTTPClient.MaxRetries)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "search-service", cfg.Tracing.ServiceName)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_HTTPSource(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "http")
	t.Setenv("CATALOG_URL", "https://shop.example.com/data/products.json")
	t.Setenv("CATALOG_HTTP_MAX_RETRIES", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, SourceHTTP, cfg.CatalogSource)
	assert.Equal(t, 5, cfg.HTTPClient.MaxRetries)
}

func TestLoad_HTTPSourceRequiresURL(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "http")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_URL is required")
}

func TestLoad_UnknownSource(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_SOURCE")
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("SEARCH_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	t.Setenv("TRACING_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACING_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("SEARCH_RATE_LIMIT_BURST", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("SEARCH_RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.RateLimit.TrustedProxies)
}

func TestLoad_InvalidTrustedProxies(t *testing.T) {
	t.Setenv("SEARCH_RATE_LIMIT_TRUSTED_PROXIES", "proxy.internal")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEARCH_RATE_LIMIT_TRUSTED_PROXIES")
}

func TestLoad_KafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}
