package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"chronicle/pkg/platform/sentinel"
)

// InMemoryStore keeps identity mappings in process.
type InMemoryStore struct {
	mu       sync.RWMutex
	mappings map[uuid.UUID]Mapping
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{mappings: make(map[uuid.UUID]Mapping)}
}

func (s *InMemoryStore) Find(_ context.Context, id uuid.UUID) (Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if mapping, ok := s.mappings[id]; ok {
		return mapping, nil
	}
	return Mapping{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Insert(_ context.Context, mapping Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mappings[mapping.ID]; ok {
		return sentinel.ErrConflict
	}
	s.mappings[mapping.ID] = mapping
	return nil
}

// Len reports the number of stored mappings.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mappings)
}
