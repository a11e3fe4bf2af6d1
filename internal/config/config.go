// Package config loads and validates application configuration from
// config.yaml and PORFIRIA_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/porfiria-rules-server/internal/domain"
)

// Manager loads configuration via Viper and hands out typed sections.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/porfiria-rules-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("PORFIRIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.tls_enabled", false)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "porfiria")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// KIE service defaults
	viper.SetDefault("kie.enabled", true)
	viper.SetDefault("kie.base_url", "http://localhost:8080")
	viper.SetDefault("kie.timeout", "10s")
	viper.SetDefault("kie.rate_limit", 10)
	viper.SetDefault("kie.retry_count", 2)
	viper.SetDefault("kie.health_interval", "30s")

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "1h")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")

	// Engine defaults. The tier thresholds default to zero, meaning "use the
	// scheme's built-in value"; declaring them here keeps the keys reachable
	// through PORFIRIA_ENGINE_* environment variables.
	viper.SetDefault("engine.scheme", "detailed")
	viper.SetDefault("engine.critical_floor", 4)
	viper.SetDefault("engine.high_risk.min_score", 0)
	viper.SetDefault("engine.high_risk.min_critical_symptoms", 0)
	viper.SetDefault("engine.medium_risk.min_score", 0)
	viper.SetDefault("engine.medium_risk.min_critical_symptoms", 0)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetKIEConfig returns the remote rules service configuration
func (m *Manager) GetKIEConfig() *domain.KIEConfig {
	return &m.config.KIE
}

// GetCacheConfig returns the cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// GetEngineConfig returns the local engine configuration
func (m *Manager) GetEngineConfig() *domain.EngineConfig {
	return &m.config.Engine
}

// RuleConfiguration builds the validated rule configuration for the selected
// scheme. Engine overrides from the config file and environment are merged
// field-wise onto the scheme defaults: thresholds, tier messages and category
// weight multipliers can all be retuned without a rebuild. Validate is the
// fail-fast gate on the merged result.
func (m *Manager) RuleConfiguration() (*domain.RuleConfiguration, error) {
	eng := m.config.Engine
	rc, err := domain.DefaultConfiguration(domain.Scheme(eng.Scheme))
	if err != nil {
		return nil, fmt.Errorf("engine configuration: %w", err)
	}
	if len(eng.EnabledRules) > 0 {
		rc.EnabledRules = eng.EnabledRules
	}
	if eng.CriticalFloor > 0 {
		rc.CriticalFloor = eng.CriticalFloor
	}
	mergeThreshold(&rc.HighRisk, eng.HighRisk)
	mergeThreshold(&rc.MediumRisk, eng.MediumRisk)
	mergeTierMessage(&rc.Messages.HighRisk, eng.Messages.HighRisk)
	mergeTierMessage(&rc.Messages.MediumRisk, eng.Messages.MediumRisk)
	mergeTierMessage(&rc.Messages.LowRisk, eng.Messages.LowRisk)
	for cat, w := range eng.Weights {
		if w > 0 {
			rc.Weights[domain.Category(cat)] = w
		}
	}
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("engine configuration: %w", err)
	}
	return rc, nil
}

// mergeThreshold overlays the configured components of a tier threshold onto
// the scheme default. A zero component keeps the default; a medium-tier
// threshold can therefore never be silently disabled by a partial override.
func mergeThreshold(dst *domain.Threshold, src domain.Threshold) {
	if src.MinScore > 0 {
		dst.MinScore = src.MinScore
	}
	if src.MinCritical > 0 {
		dst.MinCritical = src.MinCritical
	}
}

// mergeTierMessage overlays the configured fields of a tier message template
// onto the scheme default.
func mergeTierMessage(dst *domain.TierMessage, src domain.TierMessage) {
	if src.TestType != "" {
		dst.TestType = src.TestType
	}
	if src.Confidence != "" {
		dst.Confidence = src.Confidence
	}
	if src.Message != "" {
		dst.Message = src.Message
	}
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate database configuration
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if config.Database.Username == "" {
		return fmt.Errorf("database username is required")
	}

	// Validate KIE configuration
	if config.KIE.Enabled && config.KIE.BaseURL == "" {
		return fmt.Errorf("KIE base URL is required when remote evaluation is enabled")
	}

	// Validate cache configuration
	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when the cache is enabled")
	}

	// Validate engine configuration
	if !domain.Scheme(config.Engine.Scheme).IsValid() {
		return fmt.Errorf("invalid engine scheme: %s", config.Engine.Scheme)
	}
	if _, err := m.RuleConfiguration(); err != nil {
		return err
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the connection string in URL form, which the
// migration tooling requires.
func (m *Manager) GetDatabaseURL() string {
	db := m.config.Database
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.Username, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     db.Database,
		RawQuery: "sslmode=" + db.SSLMode,
	}
	return u.String()
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
