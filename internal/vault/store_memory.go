package vault

import (
	"context"
	"sync"

	"chronicle/pkg/domain"
	"chronicle/pkg/platform/sentinel"
)

// InMemoryStore keeps vault entries in process. Seeded with the reserved
// null marker row at id 1, like the relational schema.
type InMemoryStore struct {
	mu      sync.RWMutex
	byValue map[string]domain.VaultID
	byID    map[domain.VaultID]string
	nextID  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byValue: map[string]domain.VaultID{"": domain.NullStringID},
		byID:    map[domain.VaultID]string{domain.NullStringID: ""},
		nextID:  int64(domain.NullStringID) + 1,
	}
}

func (s *InMemoryStore) Intern(_ context.Context, value string) (domain.VaultID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byValue[value]; ok {
		return id, false, nil
	}
	id := domain.VaultID(s.nextID)
	s.nextID++
	s.byValue[value] = id
	s.byID[id] = value
	return id, true, nil
}

func (s *InMemoryStore) Find(_ context.Context, value string) (domain.VaultID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.byValue[value]; ok {
		return id, nil
	}
	return 0, sentinel.ErrNotFound
}

func (s *InMemoryStore) Lookup(_ context.Context, id domain.VaultID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.byID[id]; ok {
		return value, nil
	}
	return "", sentinel.ErrNotFound
}

// Len reports the number of stored rows, including the sentinel row.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
