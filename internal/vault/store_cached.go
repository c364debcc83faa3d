package vault

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"chronicle/internal/vault/metrics"
	"chronicle/pkg/domain"
)

// CachedStore layers a value-to-id lookaside over another store. Vault rows
// are immutable, so a cached id never goes stale. Cache failures degrade to
// the underlying store.
type CachedStore struct {
	next    Store
	cache   Cache
	metrics *metrics.Metrics
}

// NewCachedStore wraps next with the given cache.
func NewCachedStore(next Store, cache Cache, m *metrics.Metrics) *CachedStore {
	return &CachedStore{next: next, cache: cache, metrics: m}
}

// cacheKey hashes the value so arbitrarily long strings map to short keys.
func cacheKey(value string) string {
	sum := blake2b.Sum256([]byte(value))
	return "chronicle:vault:" + hex.EncodeToString(sum[:])
}

func (s *CachedStore) Intern(ctx context.Context, value string) (domain.VaultID, bool, error) {
	key := cacheKey(value)
	if id, ok := s.cache.Get(ctx, key); ok {
		s.metrics.RecordCacheHit()
		return domain.VaultID(id), false, nil
	}
	s.metrics.RecordCacheMiss()

	id, created, err := s.next.Intern(ctx, value)
	if err != nil {
		return 0, false, err
	}
	s.cache.Set(ctx, key, int64(id))
	return id, created, nil
}

func (s *CachedStore) Find(ctx context.Context, value string) (domain.VaultID, error) {
	key := cacheKey(value)
	if id, ok := s.cache.Get(ctx, key); ok {
		s.metrics.RecordCacheHit()
		return domain.VaultID(id), nil
	}
	s.metrics.RecordCacheMiss()

	id, err := s.next.Find(ctx, value)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, key, int64(id))
	return id, nil
}

func (s *CachedStore) Lookup(ctx context.Context, id domain.VaultID) (string, error) {
	return s.next.Lookup(ctx, id)
}
