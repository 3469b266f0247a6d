// Package config loads quotedesk settings from an optional YAML file, a
// .env file and QUOTEDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g.
// QUOTEDESK_PRICING_EXCHANGE_RATE.
const EnvPrefix = "QUOTEDESK"

// Config holds all application configuration
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// PricingConfig holds the default quotation rates. Values are decimal
// strings so they never pass through float64.
type PricingConfig struct {
	ExchangeRate  string `mapstructure:"exchange_rate"`
	TaxRate       string `mapstructure:"tax_rate"`
	DefaultMarkup string `mapstructure:"default_markup"`
}

// CatalogConfig holds catalog search paging limits
type CatalogConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// RedisConfig holds the catalog search cache connection. An empty Addr
// disables the cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads .env (if present), then configPath (if not empty), then
// environment variables. Later sources win.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Pricing defaults
	v.SetDefault("pricing.exchange_rate", "7.1")
	v.SetDefault("pricing.tax_rate", "0.13")
	v.SetDefault("pricing.default_markup", "0.10")

	// Catalog defaults
	v.SetDefault("catalog.default_page_size", 10)
	v.SetDefault("catalog.max_page_size", 50)

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "console")
}

// Rates parses the pricing defaults.
func (p PricingConfig) Rates() (exchangeRate, taxRate, markup decimal.Decimal, err error) {
	if exchangeRate, err = decimal.NewFromString(p.ExchangeRate); err != nil {
		return exchangeRate, taxRate, markup, fmt.Errorf("pricing.exchange_rate %q: %w", p.ExchangeRate, err)
	}
	if taxRate, err = decimal.NewFromString(p.TaxRate); err != nil {
		return exchangeRate, taxRate, markup, fmt.Errorf("pricing.tax_rate %q: %w", p.TaxRate, err)
	}
	if markup, err = decimal.NewFromString(p.DefaultMarkup); err != nil {
		return exchangeRate, taxRate, markup, fmt.Errorf("pricing.default_markup %q: %w", p.DefaultMarkup, err)
	}
	return exchangeRate, taxRate, markup, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	rate, tax, markup, err := c.Pricing.Rates()
	if err != nil {
		return err
	}
	if !rate.IsPositive() {
		return fmt.Errorf("pricing.exchange_rate must be positive, got %s", rate)
	}
	if tax.IsNegative() {
		return fmt.Errorf("pricing.tax_rate must not be negative, got %s", tax)
	}
	if markup.IsNegative() {
		return fmt.Errorf("pricing.default_markup must not be negative, got %s", markup)
	}

	if c.Catalog.DefaultPageSize <= 0 {
		return fmt.Errorf("catalog.default_page_size must be positive, got %d", c.Catalog.DefaultPageSize)
	}
	if c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return fmt.Errorf("catalog.max_page_size (%d) is below catalog.default_page_size (%d)",
			c.Catalog.MaxPageSize, c.Catalog.DefaultPageSize)
	}

	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be positive when redis.addr is set")
	}

	return nil
}
