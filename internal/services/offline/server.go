// Package offline hosts the caching proxy that stands between the browser and
// the editor origin and keeps the editor usable while the origin is down.
package offline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/pwa.edit/internal/platform/httpx"
	"github.com/louisbranch/pwa.edit/internal/platform/timeouts"
	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
	cachesqlite "github.com/louisbranch/pwa.edit/internal/services/offline/cache/sqlite"
	"github.com/louisbranch/pwa.edit/internal/services/offline/origin"
	"github.com/louisbranch/pwa.edit/internal/services/offline/worker"
)

const defaultInstallRetry = 5 * time.Second

// Config defines startup inputs for the offline service.
type Config struct {
	HTTPAddr  string
	OriginURL string
	// CacheDBPath is the SQLite cache file. Empty keeps the cache in memory.
	CacheDBPath string
	MaxAge      time.Duration
	// PrecacheVersion forces a new precache namespace on deploy.
	PrecacheVersion string
	// InstallRetry is the wait between failed installs.
	InstallRetry time.Duration
}

// Server hosts the offline proxy HTTP surface and lifecycle.
type Server struct {
	httpAddr     string
	httpServer   *http.Server
	worker       *worker.Worker
	installRetry time.Duration
	closeStore   func() error
}

// NewServer validates config, opens the cache store and builds the worker.
// A cache store that cannot be opened degrades to network pass-through.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	fetcher, err := origin.NewFetcher(cfg.OriginURL, nil)
	if err != nil {
		return nil, err
	}

	store, closeStore := openStore(ctx, cfg.CacheDBPath)
	w, err := worker.New(worker.Config{
		Store:   store,
		Fetcher: fetcher,
		Manifest: worker.Manifest{
			FallbackPath: worker.DefaultFallbackPath,
			WarmURLs:     worker.DefaultWarmURLs,
			Version:      cfg.PrecacheVersion,
		},
		MaxAge: cfg.MaxAge,
	})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("build offline worker: %w", err)
	}

	installRetry := cfg.InstallRetry
	if installRetry <= 0 {
		installRetry = defaultInstallRetry
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           NewHandler(w),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		worker:       w,
		installRetry: installRetry,
		closeStore:   closeStore,
	}, nil
}

// NewHandler wraps the worker with the shared middleware chain.
func NewHandler(w *worker.Worker) http.Handler {
	return httpx.Chain(worker.Handler(w),
		httpx.RecoverPanic(),
		httpx.RequestID("off"),
		httpx.AccessLog(),
	)
}

func openStore(ctx context.Context, path string) (cache.Store, func() error) {
	path = strings.TrimSpace(path)
	if path == "" {
		log.Printf("offline cache store=memory")
		return cache.NewMemory(), func() error { return nil }
	}
	store, err := cachesqlite.Open(ctx, path)
	if err != nil {
		log.Printf("offline cache store unavailable path=%s: %v", path, err)
		return cache.Unavailable{Cause: err}, func() error { return nil }
	}
	log.Printf("offline cache store=sqlite path=%s", path)
	return store, store.Close
}

// Worker exposes the proxy's worker.
func (s *Server) Worker() *worker.Worker {
	return s.worker
}

// ListenAndServe installs the worker in the background and serves HTTP
// traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("offline server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		if err := s.worker.Run(runCtx, s.installRetry); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("offline worker stopped: %v", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("offline proxy listening addr=%s", s.httpAddr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		s.worker.Wait()
		if err != nil {
			return fmt.Errorf("shutdown offline http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve offline http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.worker != nil {
		s.worker.Wait()
	}
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			log.Printf("offline cache store close: %v", err)
		}
	}
}
