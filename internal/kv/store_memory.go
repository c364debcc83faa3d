package kv

import (
	"context"
	"sync"

	"chronicle/pkg/domain"
	"chronicle/pkg/platform/sentinel"
)

// InMemoryKeyValueStore keeps the one-value-per-key map in process.
type InMemoryKeyValueStore struct {
	mu      sync.RWMutex
	entries map[domain.VaultID]domain.VaultID
}

func NewInMemoryKeyValueStore() *InMemoryKeyValueStore {
	return &InMemoryKeyValueStore{entries: make(map[domain.VaultID]domain.VaultID)}
}

func (s *InMemoryKeyValueStore) Upsert(_ context.Context, keyID, valueID domain.VaultID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[keyID] = valueID
	return nil
}

func (s *InMemoryKeyValueStore) Get(_ context.Context, keyID domain.VaultID) (domain.VaultID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if valueID, ok := s.entries[keyID]; ok {
		return valueID, nil
	}
	return 0, sentinel.ErrNotFound
}

// Len reports the number of distinct keys.
func (s *InMemoryKeyValueStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// InMemoryKeyMultiValueStore keeps the multi-value association in process.
type InMemoryKeyMultiValueStore struct {
	mu      sync.RWMutex
	entries map[domain.VaultID][]domain.VaultID
}

func NewInMemoryKeyMultiValueStore() *InMemoryKeyMultiValueStore {
	return &InMemoryKeyMultiValueStore{entries: make(map[domain.VaultID][]domain.VaultID)}
}

func (s *InMemoryKeyMultiValueStore) Add(_ context.Context, keyID, valueID domain.VaultID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries[keyID] {
		if existing == valueID {
			return false, nil
		}
	}
	s.entries[keyID] = append(s.entries[keyID], valueID)
	return true, nil
}

func (s *InMemoryKeyMultiValueStore) Values(_ context.Context, keyID domain.VaultID) ([]domain.VaultID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.VaultID{}, s.entries[keyID]...), nil
}
