// Package cache stores computed layouts so repeated runs over the same
// graph and options skip the compiler.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for multi-instance servers
//   - [NullCache]: stores nothing, for --no-cache
//
// # Keys
//
// Keys are built by a [Keyer] from the hash of the canonical graph JSON
// and every option that changes the result. [ScopedKeyer] prefixes keys
// when several tenants share one backend.
//
// # Usage
//
//	c, err := cache.NewFileCache(cache.DefaultDir())
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(graphJSON), opts)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // decode data
//	}
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLLayout is how long a computed layout stays cached. Layouts are a
// pure function of their key, so the TTL only bounds disk use.
const TTLLayout = 7 * 24 * time.Hour

// DefaultDir returns the directory the CLI keeps its file cache in:
// $XDG_CACHE_HOME/orthoflow, falling back to the user cache directory.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "orthoflow")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "orthoflow")
	}
	return filepath.Join(os.TempDir(), "orthoflow-cache")
}
