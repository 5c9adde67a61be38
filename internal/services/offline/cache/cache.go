package cache

import (
	"bytes"
	"context"
	"maps"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
)

// Cache namespace names.
const (
	PageCacheName  = "page-cache"
	AssetCacheName = "asset-cache"
	// PrecachePrefix starts every revisioned precache namespace name.
	PrecachePrefix = "precache-"
)

// Entry is one cached response.
type Entry struct {
	Cache    string
	Key      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Clone returns a deep copy so callers never share header maps or bodies
// with the store.
func (e Entry) Clone() Entry {
	out := e
	out.Header = cloneHeader(e.Header)
	out.Body = bytes.Clone(e.Body)
	return out
}

// Age reports how long ago the entry was stored.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Equal reports whether two entries are observably the same.
func (e Entry) Equal(other Entry) bool {
	if e.Cache != other.Cache || e.Key != other.Key || e.Status != other.Status {
		return false
	}
	if !e.StoredAt.Equal(other.StoredAt) || !bytes.Equal(e.Body, other.Body) {
		return false
	}
	return maps.EqualFunc(e.Header, other.Header, func(a, b []string) bool {
		return strings.Join(a, "\x00") == strings.Join(b, "\x00")
	})
}

// Store is the persistent cache capability injected into strategies.
//
// Implementations must be safe for concurrent use. Put overwrites any entry
// with the same cache and key; the last completed write wins.
type Store interface {
	Get(ctx context.Context, cacheName, key string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, cacheName, key string) error
	// ListExpired returns keys in cacheName stored before cutoff.
	ListExpired(ctx context.Context, cacheName string, cutoff time.Time) ([]string, error)
	ListCaches(ctx context.Context) ([]string, error)
	DeleteCache(ctx context.Context, cacheName string) error
}

// ValidateEntry checks the fields every store requires.
func ValidateEntry(entry Entry) error {
	if strings.TrimSpace(entry.Cache) == "" {
		return apperrors.E(apperrors.KindInvalidInput, "cache name is required")
	}
	if strings.TrimSpace(entry.Key) == "" {
		return apperrors.E(apperrors.KindInvalidInput, "cache key is required")
	}
	if entry.StoredAt.IsZero() {
		return apperrors.E(apperrors.KindInvalidInput, "stored-at time is required")
	}
	return nil
}

// ErrUnavailable reports a cache store that cannot be opened or used.
func ErrUnavailable(cause error) error {
	return apperrors.Wrap(apperrors.KindStorageUnavailable, "cache storage unavailable", cause)
}

// Unavailable is the Store used when persistent storage cannot be opened.
// Every call fails with a storage-unavailable error, which strategies treat
// as a miss, so the layer degrades to network pass-through.
type Unavailable struct {
	Cause error
}

func (u Unavailable) Get(context.Context, string, string) (Entry, bool, error) {
	return Entry{}, false, ErrUnavailable(u.Cause)
}

func (u Unavailable) Put(context.Context, Entry) error {
	return ErrUnavailable(u.Cause)
}

func (u Unavailable) Delete(context.Context, string, string) error {
	return ErrUnavailable(u.Cause)
}

func (u Unavailable) ListExpired(context.Context, string, time.Time) ([]string, error) {
	return nil, ErrUnavailable(u.Cause)
}

func (u Unavailable) ListCaches(context.Context) ([]string, error) {
	return nil, ErrUnavailable(u.Cause)
}

func (u Unavailable) DeleteCache(context.Context, string) error {
	return ErrUnavailable(u.Cause)
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}

var _ Store = Unavailable{}
