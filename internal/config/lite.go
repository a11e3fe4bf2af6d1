// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation: no
// Postgres, no Redis, records in a local SQLite file. It is read from
// environment variables only.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// Engine settings
	Scheme string // Scoring scheme: detailed, generic

	// Remote rules service (optional)
	KIEBaseURL string        // Empty disables remote evaluation
	KIETimeout time.Duration // Remote call timeout

	// HTTP settings
	HTTPPort int

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".porfiria-rules")

	return &LiteConfig{
		DataDir:    dataDir,
		Scheme:     "detailed",
		KIETimeout: 10 * time.Second,
		HTTPPort:   8080,
		LogLevel:   "info",
		LogFormat:  "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Data directory
	if v := os.Getenv("PORFIRIA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Engine
	if v := os.Getenv("PORFIRIA_ENGINE_SCHEME"); v != "" {
		cfg.Scheme = v
	}

	// Remote rules service
	cfg.KIEBaseURL = os.Getenv("PORFIRIA_KIE_BASE_URL")
	if v := os.Getenv("PORFIRIA_KIE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.KIETimeout = d
		}
	}

	// HTTP
	if v := os.Getenv("PORFIRIA_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	// Logging
	if v := os.Getenv("PORFIRIA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORFIRIA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// RecordDBPath returns the path to the evaluation record SQLite database.
func (c *LiteConfig) RecordDBPath() string {
	return filepath.Join(c.DataDir, "evaluations.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
