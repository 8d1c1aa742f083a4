package store

import (
	"context"
	"sync"
)

// InMemoryStore keeps counters in process memory. Values are lost on restart.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string]int)}
}

func (s *InMemoryStore) Read(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) Write(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Health always succeeds.
func (s *InMemoryStore) Health(context.Context) error {
	return nil
}
