// Package timeouts defines shared timeout constants used by both services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// OriginFetch bounds a single network fetch from the cache layer to the
// origin. The cache layer has no timeout policy of its own; this is the
// client's.
const OriginFetch = 10 * time.Second

// Install bounds the precache step of the offline worker lifecycle.
const Install = 15 * time.Second
