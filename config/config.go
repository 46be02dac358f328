package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	Search    SearchConfig
	Cache     CacheConfig
	History   HistoryConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProvidersConfig holds per-source provider configuration
type ProvidersConfig struct {
	USDA   USDAConfig   `mapstructure:"usda"`
	OFF    OFFConfig    `mapstructure:"off"`
	Edamam EdamamConfig `mapstructure:"edamam"`
}

// USDAConfig holds USDA FoodData Central API configuration
type USDAConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OFFConfig holds Open Food Facts API configuration
type OFFConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EdamamConfig holds Edamam food database API configuration
type EdamamConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	AppID   string        `mapstructure:"app_id"`
	AppKey  string        `mapstructure:"app_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig holds orchestrator-level search configuration
type SearchConfig struct {
	OverallTimeout time.Duration `mapstructure:"overall_timeout"`
	DefaultLimit   int           `mapstructure:"default_limit"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// HistoryConfig holds the user-history provider configuration
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	USDA  int `mapstructure:"usda"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutrilog/")

	// Environment variable settings. Nested keys map with underscores,
	// e.g. providers.usda.api_key -> NUTRILOG_PROVIDERS_USDA_API_KEY.
	v.SetEnvPrefix("NUTRILOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
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
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Provider defaults
	// Credentials default to empty so viper registers the keys for env lookup
	v.SetDefault("providers.usda.enabled", true)
	v.SetDefault("providers.usda.api_key", "")
	v.SetDefault("providers.usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("providers.usda.timeout", "10s")
	v.SetDefault("providers.off.enabled", true)
	v.SetDefault("providers.off.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("providers.off.timeout", "10s")
	v.SetDefault("providers.edamam.enabled", false)
	v.SetDefault("providers.edamam.app_id", "")
	v.SetDefault("providers.edamam.app_key", "")
	v.SetDefault("providers.edamam.base_url", "https://api.edamam.com")
	v.SetDefault("providers.edamam.timeout", "10s")

	// Search defaults
	v.SetDefault("search.overall_timeout", "12s")
	v.SetDefault("search.default_limit", 20)

	// Cache defaults
	v.SetDefault("cache.ttl", "15m")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", "nutrilog.db")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.usda", 1000)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Providers.USDA.Enabled && config.Providers.USDA.APIKey == "" {
		return fmt.Errorf("USDA API key is required when the USDA provider is enabled (set NUTRILOG_PROVIDERS_USDA_API_KEY)")
	}

	if config.Providers.Edamam.Enabled && (config.Providers.Edamam.AppID == "" || config.Providers.Edamam.AppKey == "") {
		return fmt.Errorf("Edamam app_id and app_key are required when the Edamam provider is enabled")
	}

	if config.History.Enabled && config.History.DBPath == "" {
		return fmt.Errorf("history db_path is required when the history provider is enabled")
	}

	if config.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search default_limit must be positive, got: %d", config.Search.DefaultLimit)
	}

	return nil
}
