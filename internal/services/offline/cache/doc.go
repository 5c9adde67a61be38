// Package cache declares the named response caches used by the offline layer.
//
// A Store holds several namespaces ("page-cache", "asset-cache", the
// revisioned precache). Entries are keyed by request key inside a namespace
// and carry the time they were stored so expiration can be decided by the
// caller.
package cache
