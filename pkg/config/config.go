// Package config loads environment-sourced configuration for the hosting
// process.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all recognized environment options.
type Config struct {
	// MongoURI is the document store connection string.
	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`

	// MongoDatabase is the database holding the cache collections.
	MongoDatabase string `env:"MONGODB_DB" envDefault:"transfermarkt"`

	// ProviderBaseURL is the scraping backend's base URL.
	ProviderBaseURL string `env:"PROVIDER_BASE_URL" envDefault:"http://localhost:8000"`

	// CacheExpirationDays is the staleness window for IsCacheExpired.
	CacheExpirationDays int `env:"CACHE_EXPIRATION_DAYS" envDefault:"3"`

	// ScrapeDelay is the fixed pacing delay between provider requests.
	ScrapeDelay time.Duration `env:"BG_REFRESH_SCRAPE_DELAY" envDefault:"10s"`

	// CycleDelay is the delay between refresh cycles.
	CycleDelay time.Duration `env:"BG_REFRESH_CYCLE_DELAY" envDefault:"60s"`

	// RefreshEnabled gates whether the scheduler is started at all.
	RefreshEnabled bool `env:"BG_REFRESH_ENABLED" envDefault:"true"`

	// Port is the HTTP listen port.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogPretty enables human-readable console logs.
	LogPretty bool `env:"LOG_PRETTY" envDefault:"false"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ExpirationWindow returns the cache staleness window as a duration.
func (c Config) ExpirationWindow() time.Duration {
	return time.Duration(c.CacheExpirationDays) * 24 * time.Hour
}
