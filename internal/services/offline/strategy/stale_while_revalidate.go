package strategy

import (
	"context"
	"log"
)

// StaleWhileRevalidate answers from the cache immediately when it can and
// refreshes the entry from the network in the background on every request.
// Without a cached entry the caller waits for the network.
type StaleWhileRevalidate struct {
	*core
}

// NewStaleWhileRevalidate builds a stale-while-revalidate strategy.
func NewStaleWhileRevalidate(opts Options) (*StaleWhileRevalidate, error) {
	c, err := newCore("stale_while_revalidate", opts)
	if err != nil {
		return nil, err
	}
	return &StaleWhileRevalidate{core: c}, nil
}

// Handle serves req stale-while-revalidate.
func (s *StaleWhileRevalidate) Handle(ctx context.Context, req Request) (result Result, err error) {
	ctx, span := s.startSpan(ctx, req)
	defer func() { finish(ctx, span, s.cacheName, result, err) }()

	if !req.Cacheable() {
		resp, err := s.fetcher.Fetch(ctx, req)
		if err != nil {
			return Result{}, err
		}
		return Result{Response: resp, Source: SourceBypass}, nil
	}

	if entry, ok := s.lookup(ctx, req); ok {
		s.background(ctx, func(ctx context.Context) {
			if _, err := s.fetchAndStore(ctx, req); err != nil {
				log.Printf("offline cache revalidate failed cache=%s key=%s: %v", s.cacheName, req.Key(), err)
			}
		})
		return Result{Response: responseFromEntry(entry), Source: SourceStale}, nil
	}

	resp, err := s.fetchAndStore(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: resp, Source: SourceNetwork}, nil
}

var _ Strategy = (*StaleWhileRevalidate)(nil)
