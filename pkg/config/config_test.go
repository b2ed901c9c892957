package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "transfermarkt" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.CacheExpirationDays != 3 {
		t.Errorf("CacheExpirationDays = %d, want 3", cfg.CacheExpirationDays)
	}
	if cfg.ScrapeDelay != 10*time.Second {
		t.Errorf("ScrapeDelay = %v, want 10s", cfg.ScrapeDelay)
	}
	if cfg.CycleDelay != 60*time.Second {
		t.Errorf("CycleDelay = %v, want 60s", cfg.CycleDelay)
	}
	if !cfg.RefreshEnabled {
		t.Error("RefreshEnabled should default to true")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_EXPIRATION_DAYS", "7")
	t.Setenv("BG_REFRESH_SCRAPE_DELAY", "2s")
	t.Setenv("BG_REFRESH_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CacheExpirationDays != 7 {
		t.Errorf("CacheExpirationDays = %d, want 7", cfg.CacheExpirationDays)
	}
	if cfg.ScrapeDelay != 2*time.Second {
		t.Errorf("ScrapeDelay = %v, want 2s", cfg.ScrapeDelay)
	}
	if cfg.RefreshEnabled {
		t.Error("RefreshEnabled should be false")
	}
}

func TestConfig_ExpirationWindow(t *testing.T) {
	cfg := Config{CacheExpirationDays: 3}
	if got := cfg.ExpirationWindow(); got != 72*time.Hour {
		t.Errorf("ExpirationWindow() = %v, want 72h", got)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("BG_REFRESH_SCRAPE_DELAY", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("Load should fail on unparseable duration")
	}
}
