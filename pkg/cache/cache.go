// Package cache stores computed layouts and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// # Keys
//
// Keys are derived by a [Keyer] from a content hash of the input plus every
// option that changes the output, so a hit is always safe to reuse:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(specJSON), cache.LayoutKeyOpts{Strategy: "flow"})
//
// [ScopedKeyer] prefixes keys to share one backend between tenants.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// A miss is (nil, false, nil), not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)
