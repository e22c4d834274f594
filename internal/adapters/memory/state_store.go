// Package memory provides map-backed adapter implementations. They satisfy
// the same ports as the sqlite adapters and serve tests and ephemeral runs
// where no database file is wanted.
package memory

import (
	"context"
	"sync"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
)

// StateStore implements StateStorePort with an in-memory map.
type StateStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ ports.StateStorePort = (*StateStore)(nil)

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{values: make(map[string]string)}
}

// Get retrieves the value stored under key. The boolean reports presence.
func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes the given keys. Missing keys are ignored.
func (s *StateStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// Len reports the number of stored keys.
func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
