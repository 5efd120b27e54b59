package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is a map-backed Store for tests and local development. It keeps
// the same encoded-array representation as the durable backends so decode
// behaviour is identical.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// GetCollection implements Store.
func (s *MemoryStore) GetCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeCollection(name, s.data[name]), nil
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, name string, record interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := appendRecord(name, s.data[name], record)
	if err != nil {
		return err
	}
	s.data[name] = data
	return nil
}

// ReplaceAll implements Store.
func (s *MemoryStore) ReplaceAll(ctx context.Context, name string, records []json.RawMessage) error {
	data, err := encodeCollection(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = data
	return nil
}

// Seed writes raw bytes directly under a collection key, bypassing encoding.
// Tests use it to simulate corrupted persisted data.
func (s *MemoryStore) Seed(name string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = raw
}
