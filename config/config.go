package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	OFF      OFFConfig
	USDA     USDAConfig
	Store    StoreConfig
	Search   SearchConfig
	Ingest   IngestConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig selects the remote nutrition provider
type ProviderConfig struct {
	Source string `mapstructure:"source"` // "openfoodfacts" or "usda"
}

// OFFConfig holds Open Food Facts API configuration
type OFFConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SearchURL string        `mapstructure:"search_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// USDAConfig holds USDA FoodData Central API configuration
type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig holds the persisted food cache configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SearchConfig holds hybrid search tuning values
type SearchConfig struct {
	DefaultLimit  int           `mapstructure:"default_limit"`
	CacheFirstMin int           `mapstructure:"cache_first_min"`
	MemoTTL       time.Duration `mapstructure:"memo_ttl"`
}

// IngestConfig holds bulk ingestion configuration
type IngestConfig struct {
	SourcePath string        `mapstructure:"source_path"`
	BatchSize  int           `mapstructure:"batch_size"`
	MinQuality float64       `mapstructure:"min_quality"`
	SeedDelay  time.Duration `mapstructure:"seed_delay"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodsearch/")

	// Environment variable settings
	v.SetEnvPrefix("FOODSEARCH")
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
	v.SetDefault("provider.source", "openfoodfacts")

	// Open Food Facts defaults
	v.SetDefault("off.base_url", "https://world.openfoodfacts.org/api/v2")
	v.SetDefault("off.search_url", "https://world.openfoodfacts.org/cgi/search.pl")
	v.SetDefault("off.user_agent", "FoodSearch/1.0")
	v.SetDefault("off.timeout", "30s")

	// USDA defaults
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	// Store defaults
	v.SetDefault("store.path", "./foodcache.db")

	// Search defaults
	v.SetDefault("search.default_limit", 10)
	v.SetDefault("search.cache_first_min", 5)
	v.SetDefault("search.memo_ttl", "5m")

	// Ingest defaults
	v.SetDefault("ingest.source_path", "./en.openfoodfacts.org.products.csv")
	v.SetDefault("ingest.batch_size", 1000)
	v.SetDefault("ingest.min_quality", 0.3)
	v.SetDefault("ingest.seed_delay", "6s") // OFF search allows 10 req/min
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Provider.Source != "openfoodfacts" && config.Provider.Source != "usda" {
		return fmt.Errorf("provider source must be 'openfoodfacts' or 'usda', got: %s", config.Provider.Source)
	}

	if config.Provider.Source == "usda" && config.USDA.APIKey == "" {
		return fmt.Errorf("USDA API key is required (set FOODSEARCH_USDA_API_KEY)")
	}

	if config.Store.Path == "" {
		return fmt.Errorf("store path must not be empty")
	}

	if config.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search default limit must be positive, got: %d", config.Search.DefaultLimit)
	}

	if config.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest batch size must be positive, got: %d", config.Ingest.BatchSize)
	}

	return nil
}
