package storage

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
)

func TestValidateLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store string
		key   string
		want  bool
	}{
		{name: "settings content", store: SettingsStore, key: ContentKey, want: true},
		{name: "unknown store", store: "prefs", key: ContentKey},
		{name: "blank key", store: SettingsStore, key: "  "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLocation(tc.store, tc.key)
			if tc.want && err != nil {
				t.Fatalf("ValidateLocation() error = %v", err)
			}
			if !tc.want && !apperrors.IsKind(err, apperrors.KindInvalidInput) {
				t.Fatalf("ValidateLocation() error = %v, want invalid input", err)
			}
		})
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	if _, ok, _ := m.Get(ctx, SettingsStore, ContentKey); ok {
		t.Fatal("fresh store has content")
	}
	if err := m.Put(ctx, SettingsStore, ContentKey, "a"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := m.Put(ctx, SettingsStore, ContentKey, "b"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := m.Get(ctx, SettingsStore, ContentKey)
	if err != nil || !ok || got != "b" {
		t.Fatalf("Get() = %q ok=%t err=%v", got, ok, err)
	}
}

func TestUnavailableKind(t *testing.T) {
	t.Parallel()

	if !apperrors.IsKind(Unavailable(nil), apperrors.KindStorageUnavailable) {
		t.Fatal("Unavailable() kind mismatch")
	}
}

func TestUnavailableStoreFailsEveryCall(t *testing.T) {
	t.Parallel()

	s := UnavailableStore{}
	if _, _, err := s.Get(context.Background(), SettingsStore, ContentKey); !apperrors.IsKind(err, apperrors.KindStorageUnavailable) {
		t.Fatalf("Get() error = %v", err)
	}
	if err := s.Put(context.Background(), SettingsStore, ContentKey, "x"); !apperrors.IsKind(err, apperrors.KindStorageUnavailable) {
		t.Fatalf("Put() error = %v", err)
	}
}
