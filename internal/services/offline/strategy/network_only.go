package strategy

import (
	"context"
	"errors"
)

// NetworkOnly forwards every request to the network and never caches.
type NetworkOnly struct {
	fetcher Fetcher
}

// NewNetworkOnly builds the pass-through strategy.
func NewNetworkOnly(fetcher Fetcher) (*NetworkOnly, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	return &NetworkOnly{fetcher: fetcher}, nil
}

// Handle fetches req from the network.
func (s *NetworkOnly) Handle(ctx context.Context, req Request) (Result, error) {
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: resp, Source: SourceBypass}, nil
}

func (s *NetworkOnly) CacheName() string { return "" }

func (s *NetworkOnly) Wait() {}

var _ Strategy = (*NetworkOnly)(nil)
