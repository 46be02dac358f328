package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nutrilog/backend/internal/domain"
	"github.com/nutrilog/backend/internal/provider/history"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	OverallTimeout time.Duration
	CacheTTL       time.Duration
}

// SearchService is the engine's top-level entry point: it validates caller
// input, fans the query out across providers, merges and ranks whatever came
// back, and caches the final response.
type SearchService struct {
	providers    []domain.Provider
	store        domain.MealLogStore
	cache        domain.SearchCache
	orchestrator *Orchestrator
	merge        *MergeService
	cacheTTL     time.Duration
}

// NewSearchService creates a search service. store may be nil to disable the
// user-history provider; cache may be nil to disable response caching.
func NewSearchService(
	providers []domain.Provider,
	store domain.MealLogStore,
	cache domain.SearchCache,
	config SearchServiceConfig,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	return &SearchService{
		providers:    providers,
		store:        store,
		cache:        cache,
		orchestrator: NewOrchestrator(config.OverallTimeout),
		merge:        NewMergeService(NewServingGenerator()),
		cacheTTL:     cacheTTL,
	}
}

// Search runs one food search. userID may be empty, in which case the
// user-history provider is skipped. Partial provider failure is never an
// error; the only error cases are an empty query and a non-positive limit.
func (s *SearchService) Search(
	ctx context.Context,
	query string,
	limit int,
	userID string,
) ([]domain.FoodSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}

	cacheKey := s.cacheKey(query, limit, userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			log.Printf("[SEARCH] cache hit for %q", query)
			return cached, nil
		}
	}

	providers := s.providers
	if s.store != nil && userID != "" {
		providers = append(append([]domain.Provider{}, providers...), history.NewProvider(s.store, userID))
	}

	bySource := s.orchestrator.Collect(ctx, providers, query, limit)
	results := s.merge.MergeAndRank(query, bySource)
	if len(results) > limit {
		results = results[:limit]
	}

	log.Printf("[SEARCH] %q: %d results from %d sources", query, len(results), len(bySource))

	if s.cache != nil && len(results) > 0 {
		if err := s.cache.Set(ctx, cacheKey, results, s.cacheTTL); err != nil {
			log.Printf("[SEARCH] cache write failed for %q: %v", query, err)
		}
	}

	return results, nil
}

// cacheKey builds a normalized response-cache key. The user id is part of the
// key because history results are user-scoped.
func (s *SearchService) cacheKey(query string, limit int, userID string) string {
	return fmt.Sprintf("search:%s:%d:%s", normalizeName(query), limit, userID)
}
