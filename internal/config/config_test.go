package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommerce/storefront/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "http://localhost:8080")

	cfg, err := config.Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(49900), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, int64(4900), cfg.Pricing.ShippingFee)
	assert.Equal(t, int64(3000), cfg.Pricing.CODFee)
	assert.Equal(t, 30*time.Second, cfg.Orders.PollInterval)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
api:
  base_url: http://backend:9000
  timeout: 10s
pricing:
  free_shipping_threshold: 99900
orders:
  poll_interval: 1m
`)

	cfg, err := config.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(99900), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, int64(4900), cfg.Pricing.ShippingFee, "unset keys keep defaults")
	assert.Equal(t, time.Minute, cfg.Orders.PollInterval)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
api:
  base_url: http://backend:9000
`)
	t.Setenv("STOREFRONT_API_BASE_URL", "http://other:7000")
	t.Setenv("STOREFRONT_POLL_INTERVAL", "5s")

	cfg, err := config.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://other:7000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Orders.PollInterval)
}

func TestLoad_RequiresBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "")

	_, err := config.Load("", "")
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "http://localhost:8080")
	t.Setenv("STOREFRONT_API_TIMEOUT", "not-a-duration")

	_, err := config.Load("", "")
	assert.Error(t, err)
}

func TestLoad_MissingYAMLIsSkipped(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "http://localhost:8080")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
}
