package cache

import (
	"context"
	"time"
)

// Cache is the process local caching abstraction.
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)
}

// UnmarshalCacheValue attempts to convert a cache value to the specified
// type. Returns the typed value and true if successful, nil and false
// otherwise.
func UnmarshalCacheValue[T any](value interface{}) (*T, bool) {
	if value == nil {
		return nil, false
	}
	if typed, ok := value.(*T); ok {
		return typed, true
	}
	return nil, false
}
