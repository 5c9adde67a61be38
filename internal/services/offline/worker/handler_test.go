package worker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
)

func TestHandlerReportsCacheSource(t *testing.T) {
	t.Parallel()

	origin := newFakeOrigin()
	w := newTestWorker(t, cache.NewMemory(), origin, nil)
	startWorker(t, w)
	h := Handler(w)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(CacheHeader); got != "hit" {
		t.Fatalf("%s = %q, want hit", CacheHeader, got)
	}
	if rec.Body.String() != "editor" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestHandlerMapsNetworkFailureToBadGateway(t *testing.T) {
	t.Parallel()

	origin := newFakeOrigin()
	w := newTestWorker(t, cache.NewMemory(), origin, nil)
	startWorker(t, w)
	origin.setOffline(true)

	rec := httptest.NewRecorder()
	Handler(w).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/content", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHandlerServesFallbackWhenOffline(t *testing.T) {
	t.Parallel()

	origin := newFakeOrigin()
	w := newTestWorker(t, cache.NewMemory(), origin, nil)
	startWorker(t, w)
	origin.setOffline(true)

	req := httptest.NewRequest(http.MethodGet, "/elsewhere", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	Handler(w).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Header().Get(CacheHeader) != "fallback" {
		t.Fatalf("status=%d source=%q", rec.Code, rec.Header().Get(CacheHeader))
	}
	if rec.Body.String() != "you are offline" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
