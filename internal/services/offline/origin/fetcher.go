// Package origin fetches intercepted requests from the editor origin over HTTP.
package origin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
	"github.com/louisbranch/pwa.edit/internal/platform/timeouts"
	"github.com/louisbranch/pwa.edit/internal/services/offline/strategy"
)

// maxResponseBody caps how much of an origin response is buffered.
const maxResponseBody = 32 << 20

// hopHeaders are connection-scoped and never forwarded in either direction.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Fetcher resolves requests against a base URL and buffers the response.
type Fetcher struct {
	base   *url.URL
	client *http.Client
}

// NewFetcher builds a fetcher for baseURL. A nil client gets one bounded by
// timeouts.OriginFetch.
func NewFetcher(baseURL string, client *http.Client) (*Fetcher, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("origin base url is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("origin base url %q must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{
			Timeout: timeouts.OriginFetch,
			// Redirects go back to the caller untouched.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Fetcher{base: base, client: client}, nil
}

// Fetch forwards req to the origin. Transport failures are reported as
// network failures; any HTTP status is a successful fetch.
func (f *Fetcher) Fetch(ctx context.Context, req strategy.Request) (strategy.Response, error) {
	target := f.base.ResolveReference(&url.URL{Path: req.URL.Path, RawPath: req.URL.RawPath, RawQuery: req.URL.RawQuery})
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	outbound, err := http.NewRequestWithContext(ctx, method, target.String(), req.BodyReader())
	if err != nil {
		return strategy.Response{}, fmt.Errorf("build origin request: %w", err)
	}
	outbound.Header = req.Header.Clone()
	if outbound.Header == nil {
		outbound.Header = http.Header{}
	}
	stripHopHeaders(outbound.Header)
	outbound.Host = f.base.Host

	resp, err := f.client.Do(outbound)
	if err != nil {
		return strategy.Response{}, apperrors.Wrap(apperrors.KindNetworkFailure, "fetch "+req.Key(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return strategy.Response{}, apperrors.Wrap(apperrors.KindNetworkFailure, "read "+req.Key(), err)
	}
	if len(body) > maxResponseBody {
		return strategy.Response{}, apperrors.E(apperrors.KindNetworkFailure, fmt.Sprintf("response for %s exceeds %d bytes", req.Key(), maxResponseBody))
	}

	header := resp.Header.Clone()
	stripHopHeaders(header)
	header.Del("Content-Length")
	return strategy.Response{Status: resp.StatusCode, Header: header, Body: body}, nil
}

func stripHopHeaders(h http.Header) {
	for _, name := range h.Values("Connection") {
		for _, field := range strings.Split(name, ",") {
			if field = strings.TrimSpace(field); field != "" {
				h.Del(field)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

var _ strategy.Fetcher = (*Fetcher)(nil)
