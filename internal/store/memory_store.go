package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/BurntSushi/toml"
)

// MemoryStore implements Store in memory. Values are kept in encoded form,
// so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get decodes the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if err := validateKey(key); err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}

	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := toml.Unmarshal(data, v); err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	return true, nil
}

// Set stores v under key.
func (s *MemoryStore) Set(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	if err := validateKey(key); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}

	s.mu.Lock()
	s.data[key] = buf.Bytes()
	s.mu.Unlock()
	return nil
}
