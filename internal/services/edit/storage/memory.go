package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Store; values are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, store, key string) (string, bool, error) {
	if err := ValidateLocation(store, key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[store+"/"+key]
	return v, ok, nil
}

func (m *Memory) Put(_ context.Context, store, key, value string) error {
	if err := ValidateLocation(store, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[store+"/"+key] = value
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
