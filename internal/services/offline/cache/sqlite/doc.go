// Package sqlite provides the persistent response cache backed by SQLite.
//
// Cache contents are derived from the origin and can always be discarded;
// they survive process restarts so the offline layer can answer while the
// origin is unreachable.
package sqlite
