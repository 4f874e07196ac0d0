package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("FOODSEARCH_SERVER_PORT")
		os.Unsetenv("FOODSEARCH_SERVER_ENVIRONMENT")
		os.Unsetenv("FOODSEARCH_PROVIDER_SOURCE")
		os.Unsetenv("FOODSEARCH_OFF_BASE_URL")
		os.Unsetenv("FOODSEARCH_OFF_USER_AGENT")
		os.Unsetenv("FOODSEARCH_USDA_API_KEY")
		os.Unsetenv("FOODSEARCH_STORE_PATH")
		os.Unsetenv("FOODSEARCH_SEARCH_DEFAULT_LIMIT")
		os.Unsetenv("FOODSEARCH_SEARCH_MEMO_TTL")
		os.Unsetenv("FOODSEARCH_INGEST_BATCH_SIZE")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Provider.Source != "openfoodfacts" {
			t.Errorf("Provider.Source = %s, want openfoodfacts", cfg.Provider.Source)
		}
		if cfg.OFF.BaseURL != "https://world.openfoodfacts.org/api/v2" {
			t.Errorf("OFF.BaseURL = %s, want https://world.openfoodfacts.org/api/v2", cfg.OFF.BaseURL)
		}
		if cfg.OFF.SearchURL != "https://world.openfoodfacts.org/cgi/search.pl" {
			t.Errorf("OFF.SearchURL = %s, want https://world.openfoodfacts.org/cgi/search.pl", cfg.OFF.SearchURL)
		}
		if cfg.Store.Path != "./foodcache.db" {
			t.Errorf("Store.Path = %s, want ./foodcache.db", cfg.Store.Path)
		}
		if cfg.Search.DefaultLimit != 10 {
			t.Errorf("Search.DefaultLimit = %d, want 10", cfg.Search.DefaultLimit)
		}
		if cfg.Search.CacheFirstMin != 5 {
			t.Errorf("Search.CacheFirstMin = %d, want 5", cfg.Search.CacheFirstMin)
		}
		if cfg.Search.MemoTTL != 5*time.Minute {
			t.Errorf("Search.MemoTTL = %v, want 5m", cfg.Search.MemoTTL)
		}
		if cfg.Ingest.BatchSize != 1000 {
			t.Errorf("Ingest.BatchSize = %d, want 1000", cfg.Ingest.BatchSize)
		}
		if cfg.Ingest.SeedDelay != 6*time.Second {
			t.Errorf("Ingest.SeedDelay = %v, want 6s", cfg.Ingest.SeedDelay)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODSEARCH_SERVER_PORT", "9090")
		os.Setenv("FOODSEARCH_SERVER_ENVIRONMENT", "production")
		os.Setenv("FOODSEARCH_STORE_PATH", "/var/lib/foodsearch/cache.db")
		os.Setenv("FOODSEARCH_SEARCH_MEMO_TTL", "1m")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Store.Path != "/var/lib/foodsearch/cache.db" {
			t.Errorf("Store.Path = %s, want /var/lib/foodsearch/cache.db", cfg.Store.Path)
		}
		if cfg.Search.MemoTTL != time.Minute {
			t.Errorf("Search.MemoTTL = %v, want 1m", cfg.Search.MemoTTL)
		}
	})

	t.Run("rejects unknown provider source", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODSEARCH_PROVIDER_SOURCE", "nutritionix")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for unknown provider source")
		}
	})

	t.Run("requires API key for usda provider", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODSEARCH_PROVIDER_SOURCE", "usda")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing USDA API key")
		}
	})

	t.Run("accepts usda provider with API key", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODSEARCH_PROVIDER_SOURCE", "usda")
		os.Setenv("FOODSEARCH_USDA_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Provider.Source != "usda" {
			t.Errorf("Provider.Source = %s, want usda", cfg.Provider.Source)
		}
		if cfg.USDA.APIKey != "test-key" {
			t.Errorf("USDA.APIKey = %s, want test-key", cfg.USDA.APIKey)
		}
	})

	t.Run("rejects non-positive default limit", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODSEARCH_SEARCH_DEFAULT_LIMIT", "0")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for zero default limit")
		}
	})

	t.Run("rejects non-positive batch size", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODSEARCH_INGEST_BATCH_SIZE", "-1")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for negative batch size")
		}
	})
}
