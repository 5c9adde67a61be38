package strategy

import (
	"bytes"
	"context"
	"net/http"

	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
)

// Response is a fully buffered network or cached response.
//
// Status 0 stands for an opaque response (a cross-origin no-cors fetch whose
// status cannot be read); it is cacheable like 200.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy.
func (r Response) Clone() Response {
	out := Response{Status: r.Status, Body: bytes.Clone(r.Body)}
	if r.Header != nil {
		out.Header = r.Header.Clone()
	} else {
		out.Header = http.Header{}
	}
	return out
}

func responseFromEntry(entry cache.Entry) Response {
	return Response{Status: entry.Status, Header: entry.Header, Body: entry.Body}.Clone()
}

// Source tells where a served response came from.
type Source string

const (
	SourceCache    Source = "hit"
	SourceNetwork  Source = "miss"
	SourceStale    Source = "stale"
	SourceFallback Source = "fallback"
	SourceBypass   Source = "bypass"
)

// Result is what a strategy hands back to the intercepting layer.
type Result struct {
	Response Response
	Source   Source
}

// Fetcher performs a network fetch. A returned error is a network failure;
// any HTTP status, including errors, is a successful fetch.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
