package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application-level configuration, populated from the
// environment (a .env file is honoured when present).
type Config struct {
	// Auth
	ClientSecretFile string `envconfig:"CLIENT_SECRET_FILE" default:"client_secret.json"`
	TokenFile        string `envconfig:"TOKEN_FILE" default:"token.json"`

	// API
	RowLimit       int64 `envconfig:"ROW_LIMIT" default:"25000"`
	MaxRetries     int   `envconfig:"MAX_RETRIES" default:"3"`
	RateLimitDelay int   `envconfig:"RATE_LIMIT_DELAY_MS" default:"250"`

	// Pipeline
	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"1"`
	Months         int `envconfig:"MONTHS" default:"16"`

	// Output
	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`
	CacheDir  string `envconfig:"CACHE_DIR" default:"cache"`

	// Optional Postgres sink; empty disables it
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment with defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.RowLimit < 1 || cfg.RowLimit > 25000 {
		return nil, fmt.Errorf("ROW_LIMIT must be between 1 and 25000, got %d", cfg.RowLimit)
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &cfg, nil
}
