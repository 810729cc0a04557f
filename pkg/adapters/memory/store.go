package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stater/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use. State is lost when the process exits.
type Store struct {
	data map[domain.StateKey]domain.StateID
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.StateKey]domain.StateID),
	}
}

// Get returns the state of key, or domain.DefaultState.
func (s *Store) Get(_ context.Context, key domain.StateKey) (domain.StateID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

// Set records the state of key. domain.DefaultState removes the entry.
func (s *Store) Set(_ context.Context, key domain.StateKey, state domain.StateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == domain.DefaultState {
		delete(s.data, key)
		return nil
	}
	s.data[key] = state
	return nil
}

// Len returns the number of conversations outside the default state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
