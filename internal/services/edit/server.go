// Package edit hosts the editor origin: the editor page, its static assets,
// the offline document, and the content API backed by the Local Store.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/pwa.edit/internal/platform/httpx"
	"github.com/louisbranch/pwa.edit/internal/platform/timeouts"
	"github.com/louisbranch/pwa.edit/internal/services/edit/app"
	"github.com/louisbranch/pwa.edit/internal/services/edit/storage"
	editsqlite "github.com/louisbranch/pwa.edit/internal/services/edit/storage/sqlite"
)

// Config defines startup inputs for the edit service.
type Config struct {
	HTTPAddr string
	// DBPath is the Local Store file. Empty keeps the document in memory.
	DBPath string
}

// Server hosts the editor origin HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      storage.Store
}

// NewServer validates config, opens the Local Store and loads the document.
// A store that cannot be opened leaves the default document and reports
// storage-unavailable on writes.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	store := openStore(ctx, cfg.DBPath)

	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           NewHandler(ctx, store),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
	}, nil
}

func openStore(ctx context.Context, path string) storage.Store {
	path = strings.TrimSpace(path)
	if path == "" {
		log.Printf("edit local store=memory")
		return storage.NewMemory()
	}
	store, err := editsqlite.Open(ctx, path)
	if err != nil {
		log.Printf("edit local store unavailable path=%s: %v", path, err)
		return storage.UnavailableStore{Cause: err}
	}
	log.Printf("edit local store=sqlite path=%s", path)
	return store
}

// NewHandler loads the document from store and builds the origin's routes.
func NewHandler(ctx context.Context, store storage.Store) http.Handler {
	editor := app.NewEditor()
	app.Load(ctx, editor, store)
	editor.OnUpdate(app.Persist(store))

	h := &handler{editor: editor, menu: app.NewMenu(editor)}
	return httpx.Chain(h.routes(),
		httpx.RecoverPanic(),
		httpx.RequestID("edit"),
		httpx.AccessLog(),
	)
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("edit server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("edit origin listening addr=%s", s.httpAddr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown edit http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve edit http: %w", err)
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
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("edit local store close: %v", err)
		}
	}
}
