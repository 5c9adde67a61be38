package cache

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
)

func testEntry(cacheName, key, body string, storedAt time.Time) Entry {
	return Entry{
		Cache:    cacheName,
		Key:      key,
		Status:   http.StatusOK,
		Header:   http.Header{"Content-Type": []string{"text/html"}},
		Body:     []byte(body),
		StoredAt: storedAt,
	}
}

func TestMemoryPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	want := testEntry(PageCacheName, "/index.html", "<h1>hi</h1>", now)

	if err := store.Put(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.Get(ctx, PageCacheName, "/index.html")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected entry")
	}
	if !got.Equal(want) {
		t.Fatalf("entry = %+v, want %+v", got, want)
	}
	if _, ok, _ := store.Get(ctx, AssetCacheName, "/index.html"); ok {
		t.Fatal("namespaces must not share entries")
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	entry := testEntry(PageCacheName, "/", "original", time.Now())
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("put: %v", err)
	}
	entry.Body[0] = 'X'
	entry.Header.Set("Content-Type", "text/plain")

	got, _, _ := store.Get(ctx, PageCacheName, "/")
	if string(got.Body) != "original" {
		t.Fatalf("body = %q, want %q", got.Body, "original")
	}
	got.Body[0] = 'Y'
	again, _, _ := store.Get(ctx, PageCacheName, "/")
	if string(again.Body) != "original" || again.Header.Get("Content-Type") != "text/html" {
		t.Fatalf("stored entry mutated: %+v", again)
	}
}

func TestMemoryPutIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	entry := testEntry(AssetCacheName, "/static/app.js", "console.log(1)", time.Now())

	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("first put: %v", err)
	}
	once, _, _ := store.Get(ctx, AssetCacheName, entry.Key)
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("second put: %v", err)
	}
	twice, _, _ := store.Get(ctx, AssetCacheName, entry.Key)
	if !once.Equal(twice) || store.Len(AssetCacheName) != 1 {
		t.Fatalf("store changed after identical put: %+v vs %+v", once, twice)
	}
}

func TestMemoryListExpiredAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	now := time.Now()
	_ = store.Put(ctx, testEntry(PageCacheName, "/old", "a", now.Add(-31*24*time.Hour)))
	_ = store.Put(ctx, testEntry(PageCacheName, "/new", "b", now))

	keys, err := store.ListExpired(ctx, PageCacheName, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if strings.Join(keys, ",") != "/old" {
		t.Fatalf("expired keys = %v, want [/old]", keys)
	}
	if err := store.Delete(ctx, PageCacheName, "/old"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, PageCacheName, "/old"); ok {
		t.Fatal("expected deleted entry to be gone")
	}
}

func TestMemoryListAndDeleteCaches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	_ = store.Put(ctx, testEntry("precache-a", "/offline.html", "a", time.Now()))
	_ = store.Put(ctx, testEntry(PageCacheName, "/", "b", time.Now()))

	names, _ := store.ListCaches(ctx)
	if strings.Join(names, ",") != "page-cache,precache-a" {
		t.Fatalf("caches = %v", names)
	}
	if err := store.DeleteCache(ctx, "precache-a"); err != nil {
		t.Fatalf("delete cache: %v", err)
	}
	names, _ = store.ListCaches(ctx)
	if strings.Join(names, ",") != "page-cache" {
		t.Fatalf("caches after delete = %v", names)
	}
}

func TestMemoryPutValidates(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	err := store.Put(context.Background(), Entry{Cache: PageCacheName})
	if !apperrors.IsKind(err, apperrors.KindInvalidInput) {
		t.Fatalf("put error = %v, want invalid input", err)
	}
}

func TestUnavailableFailsEveryCall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := Unavailable{}
	if _, _, err := store.Get(ctx, PageCacheName, "/"); !apperrors.IsKind(err, apperrors.KindStorageUnavailable) {
		t.Fatalf("get error = %v", err)
	}
	if err := store.Put(ctx, testEntry(PageCacheName, "/", "x", time.Now())); !apperrors.IsKind(err, apperrors.KindStorageUnavailable) {
		t.Fatalf("put error = %v", err)
	}
	if _, err := store.ListCaches(ctx); !apperrors.IsKind(err, apperrors.KindStorageUnavailable) {
		t.Fatalf("list error = %v", err)
	}
}
