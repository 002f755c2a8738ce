// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	APIBaseURL string // Backend REST root, e.g. http://localhost:8080/api
	DataDir    string // Holds state.db and the log file (always absolute)
	LogLevel   string
	LogFile    string

	// HTTPTimeout bounds each backend call. Zero means no timeout: a hung call
	// leaves the page in its loading state.
	HTTPTimeout time.Duration

	// TradeCloseDelay is how long a successful trade or transfer stays on screen
	// before the dialog closes itself.
	TradeCloseDelay time.Duration

	RefreshSchedule       string // cron spec for background session reconciliation
	CachePruneSchedule    string // cron spec for dropping expired cache entries
	WALCheckpointSchedule string // cron spec for truncating the state database WAL
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("STOCKTRADER_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".stocktrader")
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// The state database holds the cached credential, keep the directory private.
	if err := os.MkdirAll(absDataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		APIBaseURL:            strings.TrimRight(getEnv("STOCKTRADER_API_URL", "http://localhost:8080/api"), "/"),
		DataDir:               absDataDir,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFile:               getEnv("LOG_FILE", filepath.Join(absDataDir, "stocktrader.log")),
		HTTPTimeout:           time.Duration(getEnvAsInt("STOCKTRADER_HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
		TradeCloseDelay:       time.Duration(getEnvAsInt("STOCKTRADER_TRADE_CLOSE_DELAY_MS", 1500)) * time.Millisecond,
		RefreshSchedule:       getEnv("STOCKTRADER_REFRESH_SCHEDULE", "@every 5m"),
		CachePruneSchedule:    getEnv("STOCKTRADER_CACHE_PRUNE_SCHEDULE", "@every 1m"),
		WALCheckpointSchedule: getEnv("STOCKTRADER_WAL_CHECKPOINT_SCHEDULE", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StatePath returns the location of the local state database
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("STOCKTRADER_API_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("STOCKTRADER_HTTP_TIMEOUT_SECONDS must not be negative")
	}
	if c.TradeCloseDelay < 0 {
		return fmt.Errorf("STOCKTRADER_TRADE_CLOSE_DELAY_MS must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
