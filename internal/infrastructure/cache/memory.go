package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nutrilog/backend/internal/domain"
)

// cacheItem represents a single cached response with expiration
type cacheItem struct {
	results    []domain.FoodSearchResult
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory response cache with TTL support
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached response. Returns ErrCacheMiss for unknown or
// expired keys.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]domain.FoodSearchResult, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	// Copy so callers cannot mutate the cached slice
	results := make([]domain.FoodSearchResult, len(item.results))
	copy(results, item.results)
	return results, nil
}

// Set stores a response in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, results []domain.FoodSearchResult, ttl time.Duration) error {
	stored := make([]domain.FoodSearchResult, len(results))
	copy(stored, results)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		results:    stored,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a cached response
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
