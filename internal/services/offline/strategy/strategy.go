// Package strategy implements the caching strategies of the offline layer:
// cache-first for pages, stale-while-revalidate for assets, and network-only
// pass-through, each configured with an ordered plugin list.
package strategy

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/louisbranch/pwa.edit/internal/services/offline/strategy"

var (
	tracer        = otel.Tracer(instrumentationName)
	resultCounter = newResultCounter()
)

func newResultCounter() metric.Int64Counter {
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"offline.strategy.results",
		metric.WithDescription("Responses served by offline strategies, by cache and source."),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
}

// Strategy answers one intercepted request.
type Strategy interface {
	Handle(ctx context.Context, req Request) (Result, error)
	// CacheName is the namespace the strategy reads and writes, or "" when
	// it never caches.
	CacheName() string
	// Wait blocks until background work started by Handle has finished.
	Wait()
}

// Options configures a caching strategy.
type Options struct {
	CacheName string
	Store     cache.Store
	Fetcher   Fetcher
	Plugins   []Plugin
	// Now defaults to time.Now.
	Now func() time.Time
}

// core holds what every caching strategy shares: lookup through read
// plugins, network fetch, and store through write plugins.
type core struct {
	name      string
	cacheName string
	store     cache.Store
	fetcher   Fetcher
	plugins   []Plugin
	now       func() time.Time
	inflight  sync.WaitGroup
}

func newCore(name string, opts Options) (*core, error) {
	if strings.TrimSpace(opts.CacheName) == "" {
		return nil, errors.New("cache name is required")
	}
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &core{
		name:      name,
		cacheName: opts.CacheName,
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		plugins:   append([]Plugin(nil), opts.Plugins...),
		now:       now,
	}, nil
}

func (c *core) CacheName() string { return c.cacheName }

func (c *core) Wait() { c.inflight.Wait() }

// lookup returns a usable cached entry. Store failures count as a miss; an
// entry rejected by a read plugin is purged and counts as a miss.
func (c *core) lookup(ctx context.Context, req Request) (cache.Entry, bool) {
	entry, ok, err := c.store.Get(ctx, c.cacheName, req.Key())
	if err != nil {
		log.Printf("offline cache read failed cache=%s key=%s: %v", c.cacheName, req.Key(), err)
		return cache.Entry{}, false
	}
	if !ok {
		return cache.Entry{}, false
	}
	if !allowRead(c.plugins, entry, c.now()) {
		if err := c.store.Delete(ctx, c.cacheName, req.Key()); err != nil {
			log.Printf("offline cache purge failed cache=%s key=%s: %v", c.cacheName, req.Key(), err)
		}
		return cache.Entry{}, false
	}
	return entry, true
}

// fetchAndStore fetches req and writes the response when the write plugins
// accept it. The response is returned whether or not it was stored.
func (c *core) fetchAndStore(ctx context.Context, req Request) (Response, error) {
	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return Response{}, err
	}
	c.put(ctx, req, resp)
	return resp, nil
}

func (c *core) put(ctx context.Context, req Request, resp Response) bool {
	if !allowWrite(c.plugins, resp) {
		return false
	}
	now := c.now()
	entry := cache.Entry{
		Cache:    c.cacheName,
		Key:      req.Key(),
		Status:   resp.Status,
		Header:   resp.Header,
		Body:     resp.Body,
		StoredAt: now,
	}
	if err := c.store.Put(ctx, entry); err != nil {
		log.Printf("offline cache write failed cache=%s key=%s: %v", c.cacheName, req.Key(), err)
		return false
	}
	log.Printf("offline cache stored cache=%s key=%s size=%s", c.cacheName, req.Key(), humanize.Bytes(uint64(len(resp.Body))))
	for _, p := range c.plugins {
		if p.CacheDidUpdate == nil {
			continue
		}
		if err := p.CacheDidUpdate(ctx, c.store, c.cacheName, now); err != nil {
			log.Printf("offline cache plugin %s failed cache=%s: %v", p.Name, c.cacheName, err)
		}
	}
	return true
}

// background runs fn detached from the request's cancellation and tracks it
// for Wait.
func (c *core) background(ctx context.Context, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn(ctx)
	}()
}

func (c *core) startSpan(ctx context.Context, req Request) (context.Context, trace.Span) {
	return tracer.Start(ctx, "offline."+c.name,
		trace.WithAttributes(
			attribute.String("offline.cache", c.cacheName),
			attribute.String("offline.key", req.Key()),
			attribute.String("offline.mode", string(req.Mode)),
			attribute.String("offline.destination", string(req.Destination)),
		),
	)
}

func finish(ctx context.Context, span trace.Span, cacheName string, result Result, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("offline.source", string(result.Source)))
		resultCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("cache", cacheName),
			attribute.String("source", string(result.Source)),
		))
	}
	span.End()
}
