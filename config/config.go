package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Compare   CompareConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig holds catalog loader configuration
type CatalogConfig struct {
	Sources           []string      `mapstructure:"sources"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	AttemptTimeout    time.Duration `mapstructure:"attempt_timeout"`
	RequireSpecs      bool          `mapstructure:"require_specs"`
	FallbackEnabled   bool          `mapstructure:"fallback_enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// CompareConfig holds comparison set configuration
type CompareConfig struct {
	Capacity int         `mapstructure:"capacity"`
	Key      string      `mapstructure:"key"`
	Store    StoreConfig `mapstructure:"store"`
}

// StoreConfig selects the durable store behind the comparison set
type StoreConfig struct {
	Type  string `mapstructure:"type"` // "file", "sqlite" or "memory"
	Path  string `mapstructure:"path"`
	Scope string `mapstructure:"scope"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// SearchConfig holds search tuning
type SearchConfig struct {
	SuggestLimit      int `mapstructure:"suggest_limit"`
	CandidateMinQuery int `mapstructure:"candidate_min_query"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "text" or "json"
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from the .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/evora/")

	// EVORA_CATALOG_MAX_RETRIES maps to catalog.max_retries
	v.SetEnvPrefix("EVORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Catalog defaults
	v.SetDefault("catalog.sources", []string{"products.json", "js/PRODUCT-DETAILS.JSON"})
	v.SetDefault("catalog.max_retries", 3)
	v.SetDefault("catalog.retry_delay", "1s")
	v.SetDefault("catalog.attempt_timeout", "5s")
	v.SetDefault("catalog.require_specs", false)
	v.SetDefault("catalog.fallback_enabled", true)
	v.SetDefault("catalog.requests_per_second", 10)

	// Compare defaults
	v.SetDefault("compare.capacity", 3)
	v.SetDefault("compare.key", "compareList")
	v.SetDefault("compare.store.type", "file")
	v.SetDefault("compare.store.path", "./data/compare")
	v.SetDefault("compare.store.scope", "default")

	// Cache defaults
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_entries", 1024)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Search defaults
	v.SetDefault("search.suggest_limit", 8)
	v.SetDefault("search.candidate_min_query", 2)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Compare.Store.Type {
	case "file", "sqlite":
		if config.Compare.Store.Path == "" {
			return fmt.Errorf("compare store path is required for store type %q", config.Compare.Store.Type)
		}
	case "memory":
	default:
		return fmt.Errorf("compare store type must be 'file', 'sqlite' or 'memory', got: %s", config.Compare.Store.Type)
	}

	if len(config.Catalog.Sources) == 0 && !config.Catalog.FallbackEnabled {
		return errors.New("at least one catalog source is required when the fallback is disabled")
	}
	if config.Catalog.MaxRetries < 1 {
		return fmt.Errorf("catalog max_retries must be at least 1, got: %d", config.Catalog.MaxRetries)
	}
	if config.Catalog.AttemptTimeout <= 0 {
		return fmt.Errorf("catalog attempt_timeout must be positive, got: %s", config.Catalog.AttemptTimeout)
	}
	if config.Catalog.RetryDelay < 0 {
		return fmt.Errorf("catalog retry_delay must not be negative, got: %s", config.Catalog.RetryDelay)
	}
	if config.Compare.Capacity < 1 {
		return fmt.Errorf("compare capacity must be at least 1, got: %d", config.Compare.Capacity)
	}
	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got: %s", config.Cache.TTL)
	}
	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got: %s", config.Log.Level)
	}

	return nil
}

// loadEnvFile reads KEY=VALUE pairs from ./.env into the environment.
// Variables already set in the environment win; a missing file is not an error,
// a malformed one is.
func loadEnvFile() error {
	err := gotenv.Load(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
