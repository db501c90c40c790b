package store

import (
	"context"
	"errors"
	"sync"
)

// memStorage is an in-memory kv.Storage that can be told to fail.
type memStorage struct {
	mu      sync.Mutex
	values  map[string]string
	writes  int
	failGet bool
	failSet bool
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errors.New("storage unavailable")
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) SetString(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("storage unavailable")
	}
	m.values[key] = value
	m.writes++
	return nil
}
