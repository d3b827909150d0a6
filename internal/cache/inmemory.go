package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/recouphq/recoup/internal/config"
)

const (
	ExpiryDefaultInMemory = 30 * time.Minute

	// cleanupInterval controls how often expired entries are purged
	cleanupInterval = 10 * time.Minute
)

// InMemoryCache implements the Cache interface with a process local store.
type InMemoryCache struct {
	store  *gocache.Cache
	config *config.Configuration
}

// In-memory cache instance
var inMemoryCache *InMemoryCache

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache(cfg *config.Configuration) *InMemoryCache {
	return &InMemoryCache{
		store:  gocache.New(ExpiryDefaultInMemory, cleanupInterval),
		config: cfg,
	}
}

// InitializeInMemoryCache initializes the global in-memory cache instance
func InitializeInMemoryCache(cfg *config.Configuration) {
	if inMemoryCache == nil {
		inMemoryCache = NewInMemoryCache(cfg)
	}
}

// GetInMemoryCache returns the global in-memory cache instance
func GetInMemoryCache() *InMemoryCache {
	if inMemoryCache == nil {
		inMemoryCache = NewInMemoryCache(config.GetDefaultConfig())
	}
	return inMemoryCache
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	if !c.config.Cache.Enabled {
		return nil, false
	}
	return c.store.Get(key)
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.config.Cache.Enabled {
		return
	}
	if expiration == 0 {
		expiration = ExpiryDefaultInMemory
	}
	c.store.Set(key, value, expiration)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) {
	c.store.Delete(key)
}
