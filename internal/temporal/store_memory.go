package temporal

import (
	"context"
	"sync"
	"time"

	"chronicle/pkg/domain"
	"chronicle/pkg/platform/sentinel"
)

// InMemoryStore is the reference Store implementation, generic over natural
// key and payload. Entity tables instantiate it directly in tests and
// single-process setups.
type InMemoryStore[K comparable, P Payload] struct {
	mu     sync.RWMutex
	byKey  map[K][]int
	rows   []Version[P]
	keyFor []K
}

func NewInMemoryStore[K comparable, P Payload]() *InMemoryStore[K, P] {
	return &InMemoryStore[K, P]{byKey: make(map[K][]int)}
}

func (s *InMemoryStore[K, P]) Latest(_ context.Context, key K) (Version[P], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indexes := s.byKey[key]
	if len(indexes) == 0 {
		return Version[P]{}, sentinel.ErrNotFound
	}

	latest := indexes[0]
	for _, idx := range indexes[1:] {
		if s.rows[idx].RowID > s.rows[latest].RowID {
			latest = idx
		}
	}
	return s.rows[latest], nil
}

func (s *InMemoryStore[K, P]) Insert(_ context.Context, key K, version Version[P]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, version)
	s.keyFor = append(s.keyFor, key)
	s.byKey[key] = append(s.byKey[key], len(s.rows)-1)
	return nil
}

func (s *InMemoryStore[K, P]) CloseRecorded(_ context.Context, id domain.BusinessKey, rowID domain.RowID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].ID == id && s.rows[i].RowID == rowID && s.rows[i].Recorded.Open() {
			s.rows[i].Recorded = s.rows[i].Recorded.ClosedAt(at)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// VersionsOf returns every physical row for key in insertion order. Test
// helper for row-count and history assertions.
func (s *InMemoryStore[K, P]) VersionsOf(key K) []Version[P] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indexes := s.byKey[key]
	versions := make([]Version[P], 0, len(indexes))
	for _, idx := range indexes {
		versions = append(versions, s.rows[idx])
	}
	return versions
}

// AllRows returns every physical row across all keys in insertion order.
func (s *InMemoryStore[K, P]) AllRows() []Version[P] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Version[P]{}, s.rows...)
}
