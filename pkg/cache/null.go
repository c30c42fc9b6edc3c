package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every layout is computed afresh. The CLI
// uses it for --no-cache, for `[cache] disabled = true` and when the
// cache directory cannot be created.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get always misses.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
