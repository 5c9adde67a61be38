// Package sqlite provides the SQLite-backed Local Store.
package sqlite
