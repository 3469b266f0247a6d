package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7.1", cfg.Pricing.ExchangeRate)
	assert.Equal(t, "0.13", cfg.Pricing.TaxRate)
	assert.Equal(t, "0.10", cfg.Pricing.DefaultMarkup)
	assert.Equal(t, 10, cfg.Catalog.DefaultPageSize)
	assert.Equal(t, 50, cfg.Catalog.MaxPageSize)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "quotedesk.yaml")
	yaml := []byte(`
pricing:
  exchange_rate: "7.25"
catalog:
  default_page_size: 20
redis:
  addr: "localhost:6379"
  ttl: 1m
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))
	t.Setenv("QUOTEDESK_PRICING_TAX_RATE", "0.09")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7.25", cfg.Pricing.ExchangeRate)
	assert.Equal(t, "0.09", cfg.Pricing.TaxRate)
	assert.Equal(t, 20, cfg.Catalog.DefaultPageSize)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUOTEDESK_LOGGER_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUOTEDESK_LOGGER_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Pricing: PricingConfig{ExchangeRate: "7.1", TaxRate: "0.13", DefaultMarkup: "0.10"},
			Catalog: CatalogConfig{DefaultPageSize: 10, MaxPageSize: 50},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero exchange rate", func(c *Config) { c.Pricing.ExchangeRate = "0" }, true},
		{"negative tax", func(c *Config) { c.Pricing.TaxRate = "-0.1" }, true},
		{"negative markup", func(c *Config) { c.Pricing.DefaultMarkup = "-1" }, true},
		{"not a number", func(c *Config) { c.Pricing.ExchangeRate = "seven" }, true},
		{"zero page size", func(c *Config) { c.Catalog.DefaultPageSize = 0 }, true},
		{"max below default", func(c *Config) { c.Catalog.MaxPageSize = 5 }, true},
		{"redis without ttl", func(c *Config) { c.Redis.Addr = "localhost:6379" }, true},
		{"redis with ttl", func(c *Config) {
			c.Redis.Addr = "localhost:6379"
			c.Redis.TTL = time.Minute
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPricingConfig_Rates(t *testing.T) {
	rate, tax, markup, err := PricingConfig{ExchangeRate: "7.1", TaxRate: "0.13", DefaultMarkup: "0.10"}.Rates()
	require.NoError(t, err)
	assert.Equal(t, "7.1", rate.String())
	assert.Equal(t, "0.13", tax.String())
	assert.Equal(t, "0.1", markup.String())
}
