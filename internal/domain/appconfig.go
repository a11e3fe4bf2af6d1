package domain

import (
	"time"
)

// Config is the full application configuration, loaded by internal/config.
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	KIE         KIEConfig      `mapstructure:"kie"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Engine      EngineConfig   `mapstructure:"engine"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// KIEConfig represents the remote rules service configuration. Enabled=false
// runs every evaluation on the local engine.
type KIEConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RetryCount     int           `mapstructure:"retry_count"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

// CacheConfig represents the Redis cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// EngineConfig selects and tunes the local rule engine. Threshold, message
// and weight overrides are merged field-wise onto the scheme defaults; a zero
// value leaves the default in place.
type EngineConfig struct {
	Scheme        string             `mapstructure:"scheme"`
	EnabledRules  []string           `mapstructure:"enabled_rules"`
	CriticalFloor float64            `mapstructure:"critical_floor"`
	HighRisk      Threshold          `mapstructure:"high_risk"`
	MediumRisk    Threshold          `mapstructure:"medium_risk"`
	Messages      TierMessages       `mapstructure:"messages"`
	Weights       map[string]float64 `mapstructure:"weights"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
