// Package config loads the immutable process configuration from the
// environment, with .env support for local runs.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is read once at startup and never mutated.
type Config struct {
	// CrawlingBotDB is the Postgres URL for the market history tables.
	CrawlingBotDB string `validate:"required"`

	// ArgusFintelDB is the Postgres URL for the mri_analysis table used by
	// the pulse job. Empty unless that job runs.
	ArgusFintelDB string

	// GeminiAPIKey enables the generative tier and the pulse selection
	// step. Empty disables both; deterministic tiers still run.
	GeminiAPIKey string

	HTTPTimeout    time.Duration `validate:"gt=0"`
	BrowserTimeout time.Duration `validate:"gt=0"`

	// Force re-crawls over existing rows: delete by natural key, insert.
	Force bool
}

// Load reads .env if present, then the environment, and validates the
// result. Flags may override Force afterwards.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CrawlingBotDB:  os.Getenv("CRAWLING_BOT_DB"),
		ArgusFintelDB:  os.Getenv("ARGUS_FINTEL_DB"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		HTTPTimeout:    envDuration("HTTP_TIMEOUT", 15*time.Second),
		BrowserTimeout: envDuration("BROWSER_TIMEOUT", 45*time.Second),
		Force:          os.Getenv("CRAWL_FORCE") == "true",
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
