package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitemigrate "github.com/louisbranch/pwa.edit/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/pwa.edit/internal/services/edit/storage"
	"github.com/louisbranch/pwa.edit/internal/services/edit/storage/sqlite/migrations"
)

// Store provides SQLite-backed persistence for the editor document.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path and upgrades its schema. Every object
// store is a table named after it.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path)
	if err != nil {
		return nil, storage.Unavailable(err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, storage.Unavailable(fmt.Errorf("run migrations: %w", err))
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get reads one value.
func (s *Store) Get(ctx context.Context, store, key string) (string, bool, error) {
	if s == nil || s.sqlDB == nil {
		return "", false, storage.Unavailable(errors.New("storage is not configured"))
	}
	if err := storage.ValidateLocation(store, key); err != nil {
		return "", false, err
	}
	var value string
	// store is one of storage.KnownStores.
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM `+store+` WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, storage.Unavailable(fmt.Errorf("get %s/%s: %w", store, key, err))
	}
	return value, true, nil
}

// Put writes one value, replacing any previous one.
func (s *Store) Put(ctx context.Context, store, key, value string) error {
	if s == nil || s.sqlDB == nil {
		return storage.Unavailable(errors.New("storage is not configured"))
	}
	if err := storage.ValidateLocation(store, key); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO `+store+` (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return storage.Unavailable(fmt.Errorf("put %s/%s: %w", store, key, err))
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
