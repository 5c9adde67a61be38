package storage

import (
	"context"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
)

// Object store and key names.
const (
	SettingsStore = "settings"
	ContentKey    = "content"
)

// KnownStores lists the object stores the schema creates.
var KnownStores = []string{SettingsStore}

// Store is the Local Store: a key-value map partitioned by object store.
//
// Any failing operation reports a storage-unavailable error; callers treat it
// as a missing value on read.
type Store interface {
	Get(ctx context.Context, store, key string) (string, bool, error)
	Put(ctx context.Context, store, key, value string) error
	Close() error
}

// ValidateLocation checks a store/key pair before it reaches the database.
func ValidateLocation(store, key string) error {
	if !slices.Contains(KnownStores, store) {
		return apperrors.E(apperrors.KindInvalidInput, "unknown object store "+store)
	}
	if strings.TrimSpace(key) == "" {
		return apperrors.E(apperrors.KindInvalidInput, "key is required")
	}
	return nil
}

// Unavailable reports a storage-unavailable error wrapping cause.
func Unavailable(cause error) error {
	return apperrors.Wrap(apperrors.KindStorageUnavailable, "local store unavailable", cause)
}

// UnavailableStore is used when the database cannot be opened. Every call
// fails with a storage-unavailable error.
type UnavailableStore struct {
	Cause error
}

func (u UnavailableStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, Unavailable(u.Cause)
}

func (u UnavailableStore) Put(context.Context, string, string, string) error {
	return Unavailable(u.Cause)
}

func (u UnavailableStore) Close() error { return nil }

var _ Store = UnavailableStore{}
