package vault

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"chronicle/internal/vault/metrics"
	"chronicle/pkg/domain"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()

	var err error
	s.service, err = New(s.store, WithMetrics(metrics.New(prometheus.NewRegistry())))
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestInternIsIdempotent() {
	first, err := s.service.Intern(s.ctx, text("screwdriver"))
	s.Require().NoError(err)

	second, err := s.service.Intern(s.ctx, text("screwdriver"))
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(2, s.store.Len(), "sentinel row plus one interned value")
}

func (s *ServiceSuite) TestDistinctValuesGetDistinctIDs() {
	a, err := s.service.Intern(s.ctx, text("hammer"))
	s.Require().NoError(err)
	b, err := s.service.Intern(s.ctx, text("wrench"))
	s.Require().NoError(err)

	s.NotEqual(a, b)
}

func (s *ServiceSuite) TestNullResolvesToSentinelID() {
	id, err := s.service.Intern(s.ctx, pgtype.Text{})
	s.Require().NoError(err)

	s.Equal(domain.NullStringID, id)
	s.Equal(1, s.store.Len(), "null never touches storage")
}

func (s *ServiceSuite) TestNullAndEmptyStringShareTheSentinelRow() {
	nullID, err := s.service.Intern(s.ctx, pgtype.Text{})
	s.Require().NoError(err)
	emptyID, err := s.service.Intern(s.ctx, text(""))
	s.Require().NoError(err)

	s.Equal(domain.NullStringID, nullID)
	s.Equal(domain.NullStringID, emptyID, "empty string resolves to the seeded marker row")
}

func (s *ServiceSuite) TestLookupRoundTrip() {
	id, err := s.service.Intern(s.ctx, text("pliers"))
	s.Require().NoError(err)

	value, err := s.service.Lookup(s.ctx, id)
	s.Require().NoError(err)
	s.True(value.Valid)
	s.Equal("pliers", value.String)
}

func (s *ServiceSuite) TestLookupSentinelIsNull() {
	value, err := s.service.Lookup(s.ctx, domain.NullStringID)
	s.Require().NoError(err)
	s.False(value.Valid)
}

func (s *ServiceSuite) TestFindDoesNotMint() {
	_, ok, err := s.service.Find(s.ctx, text("unseen"))
	s.Require().NoError(err)
	s.False(ok)
	s.Equal(1, s.store.Len(), "a miss must not insert")

	id, err := s.service.Intern(s.ctx, text("unseen"))
	s.Require().NoError(err)

	found, ok, err := s.service.Find(s.ctx, text("unseen"))
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(id, found)
}

func (s *ServiceSuite) TestConcurrentInternSingleRow() {
	const goroutines = 32

	ids := make([]domain.VaultID, goroutines)
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			id, err := s.service.Intern(s.ctx, text("contested"))
			ids[i] = id
			return err
		})
	}
	s.Require().NoError(g.Wait())

	for _, id := range ids[1:] {
		s.Equal(ids[0], id)
	}
	s.Equal(2, s.store.Len())
}

type mapCache struct {
	entries map[string]int64
}

func (c *mapCache) Get(_ context.Context, key string) (int64, bool) {
	id, ok := c.entries[key]
	return id, ok
}

func (c *mapCache) Set(_ context.Context, key string, id int64) {
	c.entries[key] = id
}

func TestCachedStoreServesRepeatsFromCache(t *testing.T) {
	ctx := context.Background()
	backing := NewInMemoryStore()
	cache := &mapCache{entries: make(map[string]int64)}
	store := NewCachedStore(backing, cache, metrics.New(prometheus.NewRegistry()))

	id, created, err := store.Intern(ctx, "cached value")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if !created {
		t.Fatal("first intern should insert")
	}

	again, created, err := store.Intern(ctx, "cached value")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if created {
		t.Fatal("second intern should come from cache")
	}
	if again != id {
		t.Fatalf("cache returned %d, want %d", again, id)
	}

	found, err := store.Find(ctx, "cached value")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != id {
		t.Fatalf("find returned %d, want %d", found, id)
	}
}
