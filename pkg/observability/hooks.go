// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about snapshot rendering, tile fetches, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries), keeps the core library free of observability frameworks, and
// allows different backends (OpenTelemetry, Prometheus, DataDog, etc.).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSnapshotHooks(&mySnapshotHooks{})
//	    observability.SetTileHooks(&myTileHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Snapshot().OnStitchStart(ctx, zoom, tileCount, layerCount)
//	// ... stitch tiles ...
//	observability.Snapshot().OnStitchComplete(ctx, zoom, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Snapshot Hooks
// =============================================================================

// SnapshotHooks receives events from the snapshot rendering pipeline.
type SnapshotHooks interface {
	// Stitch events
	OnStitchStart(ctx context.Context, zoom, tileCount, layerCount int)
	OnStitchComplete(ctx context.Context, zoom int, duration time.Duration, err error)

	// Encode events
	OnEncodeStart(ctx context.Context, format string)
	OnEncodeComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Tile Hooks
// =============================================================================

// TileHooks receives events from tile fetch operations.
type TileHooks interface {
	// OnFetch records an outgoing tile request.
	OnFetch(ctx context.Context, url string)

	// OnFetched records a completed tile fetch.
	OnFetched(ctx context.Context, url string, size int, duration time.Duration)

	// OnFetchError records a failed tile fetch.
	OnFetchError(ctx context.Context, url string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSnapshotHooks is a no-op implementation of SnapshotHooks.
type NoopSnapshotHooks struct{}

func (NoopSnapshotHooks) OnStitchStart(context.Context, int, int, int)                {}
func (NoopSnapshotHooks) OnStitchComplete(context.Context, int, time.Duration, error) {}
func (NoopSnapshotHooks) OnEncodeStart(context.Context, string)                       {}
func (NoopSnapshotHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {
}

// NoopTileHooks is a no-op implementation of TileHooks.
type NoopTileHooks struct{}

func (NoopTileHooks) OnFetch(context.Context, string)                       {}
func (NoopTileHooks) OnFetched(context.Context, string, int, time.Duration) {}
func (NoopTileHooks) OnFetchError(context.Context, string, error)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	snapshotHooks SnapshotHooks = NoopSnapshotHooks{}
	tileHooks     TileHooks     = NoopTileHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetSnapshotHooks registers custom snapshot hooks.
// This should be called once at application startup before any renders.
func SetSnapshotHooks(h SnapshotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		snapshotHooks = h
	}
}

// SetTileHooks registers custom tile hooks.
// This should be called once at application startup before any fetches.
func SetTileHooks(h TileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		tileHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Snapshot returns the registered snapshot hooks.
func Snapshot() SnapshotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return snapshotHooks
}

// Tile returns the registered tile hooks.
func Tile() TileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return tileHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	snapshotHooks = NoopSnapshotHooks{}
	tileHooks = NoopTileHooks{}
	cacheHooks = NoopCacheHooks{}
}
