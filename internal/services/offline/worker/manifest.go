package worker

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
)

// Default manifest paths.
const (
	DefaultFallbackPath = "/offline.html"
)

// DefaultWarmURLs are the navigations handled through the page strategy at
// install so the editor opens offline on the next load.
var DefaultWarmURLs = []string{"/", "/index.html"}

// Manifest lists what the worker precaches and warms at install.
type Manifest struct {
	// FallbackPath is served for navigations that fail both cache and network.
	FallbackPath string
	// WarmURLs are fetched in the background through the page strategy.
	WarmURLs []string
	// Version is mixed into the revision so a deploy can force a new
	// precache namespace without changing paths.
	Version string
}

// DefaultManifest returns the offline document and the editor's entry points.
func DefaultManifest() Manifest {
	return Manifest{
		FallbackPath: DefaultFallbackPath,
		WarmURLs:     append([]string(nil), DefaultWarmURLs...),
	}
}

// Revision is a stable hash of the manifest contents.
func (m Manifest) Revision() string {
	var b strings.Builder
	b.WriteString(m.Version)
	b.WriteByte('\n')
	b.WriteString(m.FallbackPath)
	for _, u := range m.WarmURLs {
		b.WriteByte('\n')
		b.WriteString(u)
	}
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// PrecacheName is the namespace holding the fallback for this revision.
func (m Manifest) PrecacheName() string {
	return cache.PrecachePrefix + m.Revision()
}

func (m Manifest) normalized() Manifest {
	if strings.TrimSpace(m.FallbackPath) == "" {
		m.FallbackPath = DefaultFallbackPath
	}
	if m.WarmURLs == nil {
		m.WarmURLs = append([]string(nil), DefaultWarmURLs...)
	}
	return m
}
