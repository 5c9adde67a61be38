package strategy

import "context"

// CacheFirst serves a usable cached entry without touching the network and
// only fetches on a miss, storing the response when the plugins allow it.
type CacheFirst struct {
	*core
}

// NewCacheFirst builds a cache-first strategy.
func NewCacheFirst(opts Options) (*CacheFirst, error) {
	c, err := newCore("cache_first", opts)
	if err != nil {
		return nil, err
	}
	return &CacheFirst{core: c}, nil
}

// Handle serves req cache-first.
func (s *CacheFirst) Handle(ctx context.Context, req Request) (result Result, err error) {
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
		return Result{Response: responseFromEntry(entry), Source: SourceCache}, nil
	}

	resp, err := s.fetchAndStore(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: resp, Source: SourceNetwork}, nil
}

var _ Strategy = (*CacheFirst)(nil)
