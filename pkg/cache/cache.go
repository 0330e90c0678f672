// Package cache provides pluggable byte-level caching for tile responses
// and rendered artifacts.
//
// Three backends are provided:
//   - FileCache: file-based storage for CLI usage
//   - RedisCache: Redis-backed storage for serve mode
//   - NullCache: no-op cache (caching disabled)
//
// Keys are opaque strings; callers build them with [Key] or [Hash] so that
// equivalent requests share entries. Values carry an optional TTL; a zero
// TTL means the entry never expires.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the default lifetime for cached tile responses.
const DefaultTTL = 24 * time.Hour

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
