//go:build integration

package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chronicle/internal/platform/config"
	"chronicle/internal/platform/redis"
	"chronicle/internal/vault"
	"chronicle/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *redis.Client
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())

	var err error
	s.client, err = redis.New(config.RedisConfig{
		URL:          s.redis.URL,
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	s.Require().NoError(err)
	s.Require().NotNil(s.client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestVaultCacheRoundTrip() {
	ctx := context.Background()
	cache := redis.NewVaultCache(s.client, time.Minute)

	_, ok := cache.Get(ctx, "chronicle:vault:test")
	s.False(ok)

	cache.Set(ctx, "chronicle:vault:test", 42)

	id, ok := cache.Get(ctx, "chronicle:vault:test")
	s.True(ok)
	s.Equal(int64(42), id)
}

// TestCachedStoreAgainstRedis layers the lookaside over the in-memory store
// and verifies repeats bypass it.
func (s *RedisCacheSuite) TestCachedStoreAgainstRedis() {
	ctx := context.Background()
	backing := vault.NewInMemoryStore()
	store := vault.NewCachedStore(backing, redis.NewVaultCache(s.client, time.Minute), nil)

	id, created, err := store.Intern(ctx, "cached value")
	s.Require().NoError(err)
	s.True(created)

	again, created, err := store.Intern(ctx, "cached value")
	s.Require().NoError(err)
	s.False(created)
	s.Equal(id, again)

	found, err := store.Find(ctx, "cached value")
	s.Require().NoError(err)
	s.Equal(id, found)
}
