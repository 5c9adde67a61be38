package strategy

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// maxRequestBody caps request bodies the layer buffers for pass-through.
const maxRequestBody = 10 << 20

// Mode mirrors the fetch request mode reported in Sec-Fetch-Mode.
type Mode string

const (
	ModeNavigate   Mode = "navigate"
	ModeSameOrigin Mode = "same-origin"
	ModeNoCORS     Mode = "no-cors"
	ModeCORS       Mode = "cors"
)

// Destination mirrors the fetch destination reported in Sec-Fetch-Dest.
type Destination string

const (
	DestinationEmpty    Destination = ""
	DestinationDocument Destination = "document"
	DestinationStyle    Destination = "style"
	DestinationScript   Destination = "script"
	DestinationWorker   Destination = "worker"
	DestinationImage    Destination = "image"
)

// Request is one intercepted fetch: (url, mode, destination) plus what is
// needed to forward it.
type Request struct {
	Method      string
	URL         *url.URL
	Mode        Mode
	Destination Destination
	Header      http.Header
	Body        []byte
}

// Key is the cache key: path plus query.
func (r Request) Key() string {
	if r.URL == nil {
		return "/"
	}
	return r.URL.RequestURI()
}

// IsNavigation reports whether the request is a top-level document load.
func (r Request) IsNavigation() bool {
	return r.Mode == ModeNavigate
}

// Cacheable reports whether the request method allows cached answers.
func (r Request) Cacheable() bool {
	return r.Method == "" || r.Method == http.MethodGet
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s mode=%s dest=%s", r.method(), r.Key(), r.Mode, r.Destination)
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// NavigationRequest builds the request a browser sends when loading target
// as a page. Cache warming uses it.
func NavigationRequest(target string) (Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Request{}, fmt.Errorf("parse %q: %w", target, err)
	}
	return Request{
		Method:      http.MethodGet,
		URL:         u,
		Mode:        ModeNavigate,
		Destination: DestinationDocument,
		Header:      http.Header{"Accept": []string{"text/html"}},
	}, nil
}

// RequestFromHTTP turns an incoming HTTP request into an intercepted fetch.
//
// Mode and destination come from the Fetch Metadata headers. Clients that do
// not send them get a best-effort guess: a GET accepting text/html is a
// navigation, and .css/.js paths are style/script sub-resources.
func RequestFromHTTP(r *http.Request) (Request, error) {
	if r == nil || r.URL == nil {
		return Request{}, fmt.Errorf("request is required")
	}
	target := &url.URL{Path: r.URL.Path, RawPath: r.URL.RawPath, RawQuery: r.URL.RawQuery}
	if target.Path == "" {
		target.Path = "/"
	}

	req := Request{
		Method:      r.Method,
		URL:         target,
		Mode:        Mode(strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Mode")))),
		Destination: Destination(strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Dest")))),
		Header:      r.Header.Clone(),
	}
	if req.Mode == "" && req.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
		req.Mode = ModeNavigate
	}
	if req.Destination == DestinationEmpty {
		req.Destination = destinationFromPath(target.Path)
	}

	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
		if err != nil {
			return Request{}, fmt.Errorf("read request body: %w", err)
		}
		if len(body) > maxRequestBody {
			return Request{}, fmt.Errorf("request body exceeds %d bytes", maxRequestBody)
		}
		req.Body = body
	}
	return req, nil
}

// BodyReader returns a fresh reader over the buffered body, or nil.
func (r Request) BodyReader() io.Reader {
	if len(r.Body) == 0 {
		return nil
	}
	return bytes.NewReader(r.Body)
}

func destinationFromPath(p string) Destination {
	switch strings.ToLower(path.Ext(p)) {
	case ".css":
		return DestinationStyle
	case ".js", ".mjs":
		return DestinationScript
	default:
		return DestinationEmpty
	}
}
