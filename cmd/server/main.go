package main

import (
	"fmt"
	"log"
	"os"

	"github.com/burpeebet/foodsearch/config"
	httpDelivery "github.com/burpeebet/foodsearch/internal/delivery/http"
	"github.com/burpeebet/foodsearch/internal/domain"
	"github.com/burpeebet/foodsearch/internal/infrastructure/memocache"
	"github.com/burpeebet/foodsearch/internal/infrastructure/offapi"
	"github.com/burpeebet/foodsearch/internal/infrastructure/sqlstore"
	"github.com/burpeebet/foodsearch/internal/infrastructure/usdaapi"
	"github.com/burpeebet/foodsearch/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FoodSearch v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Provider: %s", cfg.Provider.Source)

	// Initialize infrastructure dependencies
	store, err := sqlstore.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open food store at %s: %v", cfg.Store.Path, err)
	}
	defer store.Close()
	log.Printf("Food store: %s", cfg.Store.Path)

	provider := newProvider(cfg)
	memo := memocache.New(cfg.Search.MemoTTL, nil)
	log.Printf("Memo TTL: %s", cfg.Search.MemoTTL)

	worker := usecase.NewPopularityWorker(store, 0)
	defer worker.Close()

	// Initialize usecase layer
	searchService := usecase.NewSearchService(
		store,
		provider,
		memo,
		worker,
		usecase.SearchServiceConfig{
			DefaultLimit:  cfg.Search.DefaultLimit,
			CacheFirstMin: cfg.Search.CacheFirstMin,
		},
	)

	log.Printf("Search: defaultLimit=%d, cacheFirstMin=%d",
		cfg.Search.DefaultLimit, cfg.Search.CacheFirstMin)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newProvider selects the remote nutrition provider from configuration.
func newProvider(cfg *config.Config) domain.ProviderClient {
	if cfg.Provider.Source == "usda" {
		if cfg.USDA.APIKey == "" {
			log.Printf("WARNING: USDA API key not configured - API calls will fail!")
		}
		return usdaapi.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL)
	}
	return offapi.NewClient(cfg.OFF.BaseURL, cfg.OFF.SearchURL, cfg.OFF.UserAgent, cfg.OFF.Timeout)
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
