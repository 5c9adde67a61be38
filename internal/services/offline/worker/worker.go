// Package worker runs the offline cache layer lifecycle: install precaches the
// offline document and warms the page cache, activate drops stale precaches,
// and only an active worker routes requests through the caching strategies.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
	"github.com/louisbranch/pwa.edit/internal/platform/timeouts"
	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
	"github.com/louisbranch/pwa.edit/internal/services/offline/strategy"
	"golang.org/x/sync/errgroup"
)

// warmConcurrency bounds parallel warming fetches.
const warmConcurrency = 2

// Config wires a worker.
type Config struct {
	Store    cache.Store
	Fetcher  strategy.Fetcher
	Manifest Manifest
	// MaxAge is the page and asset retention window. Zero means
	// strategy.DefaultMaxAge.
	MaxAge time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Worker intercepts requests on behalf of the editor origin.
type Worker struct {
	store    cache.Store
	fetcher  strategy.Fetcher
	manifest Manifest
	router   Router
	now      func() time.Time

	state   atomic.Int32
	pending sync.WaitGroup
}

// New builds a worker in the installing state.
func New(cfg Config) (*Worker, error) {
	if cfg.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = strategy.DefaultMaxAge
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	page, err := strategy.NewCacheFirst(strategy.Options{
		CacheName: cache.PageCacheName,
		Store:     cfg.Store,
		Fetcher:   cfg.Fetcher,
		Plugins: []strategy.Plugin{
			strategy.CacheableResponse(0, http.StatusOK),
			strategy.Expiration(maxAge),
		},
		Now: now,
	})
	if err != nil {
		return nil, fmt.Errorf("page strategy: %w", err)
	}
	asset, err := strategy.NewStaleWhileRevalidate(strategy.Options{
		CacheName: cache.AssetCacheName,
		Store:     cfg.Store,
		Fetcher:   cfg.Fetcher,
		Plugins: []strategy.Plugin{
			strategy.CacheableResponse(0, http.StatusOK),
			strategy.ExpirationSweep(maxAge),
		},
		Now: now,
	})
	if err != nil {
		return nil, fmt.Errorf("asset strategy: %w", err)
	}
	passthrough, err := strategy.NewNetworkOnly(cfg.Fetcher)
	if err != nil {
		return nil, fmt.Errorf("network strategy: %w", err)
	}

	return &Worker{
		store:    cfg.Store,
		fetcher:  cfg.Fetcher,
		manifest: cfg.Manifest.normalized(),
		router:   Router{Page: page, Asset: asset, Passthrough: passthrough},
		now:      now,
	}, nil
}

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Manifest returns the worker's precache manifest.
func (w *Worker) Manifest() Manifest {
	return w.manifest
}

// Start installs then activates the worker.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.Install(ctx); err != nil {
		return err
	}
	return w.Activate(ctx)
}

// Run retries Start every interval until the worker is active or ctx ends.
// Until then requests pass through to the network.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	for {
		installCtx, cancel := context.WithTimeout(ctx, timeouts.Install)
		err := w.Start(installCtx)
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("offline worker install failed, retrying in %s: %v", interval, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Install precaches the offline document and starts warming the page cache
// in the background. Only a failure to fetch the offline document fails
// install; a store that rejects the write leaves the worker without a
// fallback but still installable.
func (w *Worker) Install(ctx context.Context) error {
	if w.State() != StateInstalling {
		return nil
	}
	req, err := strategy.NavigationRequest(w.manifest.FallbackPath)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInvalidInput, "fallback path", err)
	}
	resp, err := w.fetcher.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("precache %s: %w", w.manifest.FallbackPath, err)
	}
	if resp.Status != http.StatusOK {
		return apperrors.E(apperrors.KindNetworkFailure, fmt.Sprintf("precache %s: status %d", w.manifest.FallbackPath, resp.Status))
	}

	precache := w.manifest.PrecacheName()
	entry := cache.Entry{
		Cache:    precache,
		Key:      req.Key(),
		Status:   resp.Status,
		Header:   resp.Header,
		Body:     resp.Body,
		StoredAt: w.now(),
	}
	if err := w.store.Put(ctx, entry); err != nil {
		log.Printf("offline precache write failed cache=%s key=%s: %v", precache, req.Key(), err)
	} else {
		log.Printf("offline precached cache=%s key=%s", precache, req.Key())
	}

	w.warm(ctx)
	w.state.Store(int32(StateActivating))
	return nil
}

// warm handles the warm set through the page strategy without blocking.
func (w *Worker) warm(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	urls := append([]string(nil), w.manifest.WarmURLs...)
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		var g errgroup.Group
		g.SetLimit(warmConcurrency)
		for _, target := range urls {
			g.Go(func() error {
				req, err := strategy.NavigationRequest(target)
				if err == nil {
					_, err = w.router.Page.Handle(ctx, req)
				}
				if err != nil {
					log.Printf("offline cache warming failed key=%s: %v", target, err)
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return
		}
		log.Printf("offline cache warmed count=%d", len(urls))
	}()
}

// Activate deletes precache namespaces from other revisions and starts
// routing requests through the strategies.
func (w *Worker) Activate(ctx context.Context) error {
	switch w.State() {
	case StateActive:
		return nil
	case StateInstalling:
		return errors.New("worker is not installed")
	}

	current := w.manifest.PrecacheName()
	names, err := w.store.ListCaches(ctx)
	if err != nil {
		log.Printf("offline precache cleanup skipped: %v", err)
	}
	for _, name := range names {
		if !strings.HasPrefix(name, cache.PrecachePrefix) || name == current {
			continue
		}
		if err := w.store.DeleteCache(ctx, name); err != nil {
			log.Printf("offline precache cleanup failed cache=%s: %v", name, err)
			continue
		}
		log.Printf("offline precache removed cache=%s", name)
	}

	w.state.Store(int32(StateActive))
	log.Printf("offline worker active revision=%s", w.manifest.Revision())
	return nil
}

// Handle answers one intercepted request. Before activation every request
// passes through to the network. A navigation that fails both cache and
// network is answered with the precached offline document.
func (w *Worker) Handle(ctx context.Context, req strategy.Request) (strategy.Result, error) {
	if w.State() != StateActive {
		return w.router.Passthrough.Handle(ctx, req)
	}
	result, err := w.router.Route(req).Handle(ctx, req)
	if err == nil {
		return result, nil
	}
	if !req.IsNavigation() || !req.Cacheable() {
		return strategy.Result{}, err
	}
	if fallback, ok := w.fallback(ctx); ok {
		log.Printf("offline fallback served key=%s: %v", req.Key(), err)
		return fallback, nil
	}
	return strategy.Result{}, err
}

func (w *Worker) fallback(ctx context.Context) (strategy.Result, bool) {
	entry, ok, err := w.store.Get(ctx, w.manifest.PrecacheName(), w.manifest.FallbackPath)
	if err != nil {
		log.Printf("offline fallback read failed: %v", err)
		return strategy.Result{}, false
	}
	if !ok {
		return strategy.Result{}, false
	}
	resp := strategy.Response{Status: http.StatusOK, Header: entry.Header, Body: entry.Body}.Clone()
	return strategy.Result{Response: resp, Source: strategy.SourceFallback}, true
}

// Wait blocks until warming and background revalidations have finished.
func (w *Worker) Wait() {
	w.pending.Wait()
	w.router.Wait()
}
