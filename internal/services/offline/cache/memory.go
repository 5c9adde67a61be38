package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. It does not survive restarts and is used
// in tests and as a stand-in when no database path is configured.
type Memory struct {
	mu     sync.RWMutex
	caches map[string]map[string]Entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{caches: make(map[string]map[string]Entry)}
}

func (m *Memory) Get(_ context.Context, cacheName, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.caches[cacheName][key]
	if !ok {
		return Entry{}, false, nil
	}
	return entry.Clone(), true, nil
}

func (m *Memory) Put(_ context.Context, entry Entry) error {
	if err := ValidateEntry(entry); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.caches[entry.Cache]
	if !ok {
		bucket = make(map[string]Entry)
		m.caches[entry.Cache] = bucket
	}
	bucket[entry.Key] = entry.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, cacheName, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.caches[cacheName], key)
	return nil
}

func (m *Memory) ListExpired(_ context.Context, cacheName string, cutoff time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key, entry := range m.caches[cacheName] {
		if entry.StoredAt.Before(cutoff) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) ListCaches(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) DeleteCache(_ context.Context, cacheName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.caches, cacheName)
	return nil
}

// Len returns the number of entries held in cacheName.
func (m *Memory) Len(cacheName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.caches[cacheName])
}

var _ Store = (*Memory)(nil)
