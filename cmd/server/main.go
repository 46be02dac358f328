package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nutrilog/backend/config"
	httpDelivery "github.com/nutrilog/backend/internal/delivery/http"
	"github.com/nutrilog/backend/internal/domain"
	"github.com/nutrilog/backend/internal/infrastructure/cache"
	"github.com/nutrilog/backend/internal/provider/edamam"
	"github.com/nutrilog/backend/internal/provider/off"
	"github.com/nutrilog/backend/internal/provider/usda"
	"github.com/nutrilog/backend/internal/storage"
	"github.com/nutrilog/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting NutriLog Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Register the enabled external providers
	var providers []domain.Provider

	if cfg.Providers.USDA.Enabled {
		providers = append(providers, usda.NewProvider(
			cfg.Providers.USDA.APIKey,
			cfg.Providers.USDA.BaseURL,
			cfg.Providers.USDA.Timeout,
			cfg.RateLimit.USDA,
		))
		log.Printf("USDA provider enabled: %s", cfg.Providers.USDA.BaseURL)
	}

	if cfg.Providers.OFF.Enabled {
		providers = append(providers, off.NewProvider(
			cfg.Providers.OFF.BaseURL,
			cfg.Providers.OFF.Timeout,
		))
		log.Printf("Open Food Facts provider enabled: %s", cfg.Providers.OFF.BaseURL)
	}

	if cfg.Providers.Edamam.Enabled {
		providers = append(providers, edamam.NewProvider(
			cfg.Providers.Edamam.AppID,
			cfg.Providers.Edamam.AppKey,
			cfg.Providers.Edamam.BaseURL,
			cfg.Providers.Edamam.Timeout,
		))
		log.Printf("Edamam provider enabled: %s", cfg.Providers.Edamam.BaseURL)
	}

	// Meal-log store backs the user-history provider and meal logging
	var store domain.MealLogStore
	if cfg.History.Enabled {
		sqliteStore, err := storage.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			log.Fatalf("Failed to open meal-log store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("History provider enabled: %s", cfg.History.DBPath)
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Response cache TTL: %s", cfg.Cache.TTL)

	searchService := usecase.NewSearchService(
		providers,
		store,
		memoryCache,
		usecase.SearchServiceConfig{
			OverallTimeout: cfg.Search.OverallTimeout,
			CacheTTL:       cfg.Cache.TTL,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, store, cfg.Search.DefaultLimit)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
