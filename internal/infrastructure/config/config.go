package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Widget    WidgetConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// CatalogConfig points at the driver record source.
// URL takes precedence over Path when both are set.
type CatalogConfig struct {
	Path string `envconfig:"DRIVERS_DATA_PATH" default:"data/drivers.json"`
	URL  string `envconfig:"DRIVERS_DATA_URL"`

	// LoadAttempts bounds how often a failed initial load is retried.
	LoadAttempts int           `envconfig:"DRIVERS_LOAD_ATTEMPTS" default:"5"`
	RetryWait    time.Duration `envconfig:"DRIVERS_RETRY_WAIT" default:"2s"`
}

// WidgetConfig holds widget bundle and rendering configuration.
type WidgetConfig struct {
	BundlePath string `envconfig:"WIDGET_BUNDLE_PATH" default:"web/dist/component.js"`
	Timezone   string `envconfig:"WIDGET_TIMEZONE" default:"UTC"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds allowed origins for browser hosts.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Widget.Timezone); err != nil {
		return nil, fmt.Errorf("invalid WIDGET_TIMEZONE %q: %w", cfg.Widget.Timezone, err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:         "data/drivers.json",
			LoadAttempts: 5,
			RetryWait:    2 * time.Second,
		},
		Widget: WidgetConfig{
			BundlePath: "web/dist/component.js",
			Timezone:   "UTC",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Location resolves the widget time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Widget.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
