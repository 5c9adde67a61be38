package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	sqlitemigrate "github.com/louisbranch/pwa.edit/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/pwa.edit/internal/services/offline/cache"
	"github.com/louisbranch/pwa.edit/internal/services/offline/cache/sqlite/migrations"
)

// Store provides SQLite-backed persistence for cached responses.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a response cache SQLite store.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path)
	if err != nil {
		return nil, cache.ErrUnavailable(err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, cache.ErrUnavailable(fmt.Errorf("run migrations: %w", err))
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads one cached response.
func (s *Store) Get(ctx context.Context, cacheName, key string) (cache.Entry, bool, error) {
	if err := s.ready(); err != nil {
		return cache.Entry{}, false, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT cache_name, request_key, status, header_json, body, stored_at
		 FROM cache_entries
		 WHERE cache_name = ? AND request_key = ?`,
		cacheName,
		key,
	)

	var entry cache.Entry
	var headerJSON []byte
	var storedAt int64
	if err := row.Scan(&entry.Cache, &entry.Key, &entry.Status, &headerJSON, &entry.Body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cache.Entry{}, false, nil
		}
		return cache.Entry{}, false, cache.ErrUnavailable(fmt.Errorf("get cache entry: %w", err))
	}
	entry.Header = http.Header{}
	if len(headerJSON) > 0 {
		if err := json.Unmarshal(headerJSON, &entry.Header); err != nil {
			return cache.Entry{}, false, fmt.Errorf("decode cached header: %w", err)
		}
	}
	if entry.Body == nil {
		entry.Body = []byte{}
	}
	entry.StoredAt = unixMillisToTime(storedAt)
	return entry, true, nil
}

// Put upserts a cached response; the last write for a key wins.
func (s *Store) Put(ctx context.Context, entry cache.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := cache.ValidateEntry(entry); err != nil {
		return err
	}
	header := entry.Header
	if header == nil {
		header = http.Header{}
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode cached header: %w", err)
	}
	body := entry.Body
	if body == nil {
		body = []byte{}
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO cache_entries (cache_name, request_key, status, header_json, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_name, request_key) DO UPDATE SET
		    status = excluded.status,
		    header_json = excluded.header_json,
		    body = excluded.body,
		    stored_at = excluded.stored_at`,
		entry.Cache,
		entry.Key,
		entry.Status,
		headerJSON,
		body,
		timeToUnixMillis(entry.StoredAt),
	)
	if err != nil {
		return cache.ErrUnavailable(fmt.Errorf("put cache entry: %w", err))
	}
	return nil
}

// Delete removes one cached response.
func (s *Store) Delete(ctx context.Context, cacheName, key string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ? AND request_key = ?`, cacheName, key); err != nil {
		return cache.ErrUnavailable(fmt.Errorf("delete cache entry: %w", err))
	}
	return nil
}

// ListExpired returns the keys in cacheName stored before cutoff.
func (s *Store) ListExpired(ctx context.Context, cacheName string, cutoff time.Time) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.listStrings(
		ctx,
		"list expired cache entries",
		`SELECT request_key FROM cache_entries
		 WHERE cache_name = ? AND stored_at < ?
		 ORDER BY request_key`,
		cacheName,
		timeToUnixMillis(cutoff),
	)
}

// ListCaches returns every namespace that holds at least one entry.
func (s *Store) ListCaches(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.listStrings(
		ctx,
		"list caches",
		`SELECT DISTINCT cache_name FROM cache_entries ORDER BY cache_name`,
	)
}

// DeleteCache drops a whole namespace.
func (s *Store) DeleteCache(ctx context.Context, cacheName string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ?`, cacheName); err != nil {
		return cache.ErrUnavailable(fmt.Errorf("delete cache %s: %w", cacheName, err))
	}
	return nil
}

func (s *Store) listStrings(ctx context.Context, op string, query string, args ...any) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cache.ErrUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	defer func() {
		_ = rows.Close()
	}()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return values, nil
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return cache.ErrUnavailable(errors.New("storage is not configured"))
	}
	return nil
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ cache.Store = (*Store)(nil)
