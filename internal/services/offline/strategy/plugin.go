package strategy

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
)

// DefaultMaxAge is the retention window for page and asset entries.
const DefaultMaxAge = 30 * 24 * time.Hour

// Plugin is one link of the ordered hook list a strategy runs around
// fetch-or-serve. Nil hooks are skipped. A read or a write happens only when
// every plugin in the list agrees.
type Plugin struct {
	Name string
	// CacheWillUpdate returns false when a network response must not be stored.
	CacheWillUpdate func(resp Response) bool
	// CachedResponseWillBeUsed returns false when a cached entry must be
	// treated as absent.
	CachedResponseWillBeUsed func(entry cache.Entry, now time.Time) bool
	// CacheDidUpdate runs after a successful write to cacheName.
	CacheDidUpdate func(ctx context.Context, store cache.Store, cacheName string, now time.Time) error
}

// CacheableResponse only lets responses with one of statuses into the cache.
func CacheableResponse(statuses ...int) Plugin {
	allowed := slices.Clone(statuses)
	return Plugin{
		Name: fmt.Sprintf("cacheable-response%v", allowed),
		CacheWillUpdate: func(resp Response) bool {
			return slices.Contains(allowed, resp.Status)
		},
	}
}

// Expiration treats entries older than maxAge as absent and purges expired
// entries from the cache after every write.
func Expiration(maxAge time.Duration) Plugin {
	p := ExpirationSweep(maxAge)
	p.Name = fmt.Sprintf("expiration[%s]", maxAge)
	p.CachedResponseWillBeUsed = func(entry cache.Entry, now time.Time) bool {
		return entry.Age(now) <= maxAge
	}
	return p
}

// ExpirationSweep purges entries older than maxAge after every write but
// still lets the strategy serve whatever is stored.
func ExpirationSweep(maxAge time.Duration) Plugin {
	return Plugin{
		Name: fmt.Sprintf("expiration-sweep[%s]", maxAge),
		CacheDidUpdate: func(ctx context.Context, store cache.Store, cacheName string, now time.Time) error {
			return PurgeExpired(ctx, store, cacheName, now.Add(-maxAge))
		},
	}
}

// PurgeExpired deletes every entry in cacheName stored before cutoff.
func PurgeExpired(ctx context.Context, store cache.Store, cacheName string, cutoff time.Time) error {
	keys, err := store.ListExpired(ctx, cacheName, cutoff)
	if err != nil {
		return fmt.Errorf("list expired in %s: %w", cacheName, err)
	}
	for _, key := range keys {
		if err := store.Delete(ctx, cacheName, key); err != nil {
			return fmt.Errorf("delete expired %s in %s: %w", key, cacheName, err)
		}
	}
	if len(keys) > 0 {
		log.Printf("offline cache purged expired entries cache=%s count=%d", cacheName, len(keys))
	}
	return nil
}

func allowWrite(plugins []Plugin, resp Response) bool {
	for _, p := range plugins {
		if p.CacheWillUpdate != nil && !p.CacheWillUpdate(resp) {
			return false
		}
	}
	return true
}

func allowRead(plugins []Plugin, entry cache.Entry, now time.Time) bool {
	for _, p := range plugins {
		if p.CachedResponseWillBeUsed != nil && !p.CachedResponseWillBeUsed(entry, now) {
			return false
		}
	}
	return true
}
