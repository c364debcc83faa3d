package temporal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chronicle/internal/identity"
	"chronicle/internal/sequence"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/platform/sentinel"
	"chronicle/pkg/requestcontext"
)

type chainPayload struct {
	A, B  string
	nullB bool
}

func (p chainPayload) Fingerprint() Fingerprint {
	b := text(p.B)
	if p.nullB {
		b.Valid = false
		b.String = ""
	}
	return FingerprintFields(text(p.A), b)
}

type ChainSuite struct {
	suite.Suite
	store *InMemoryStore[string, chainPayload]
	seq   *sequence.Memory
	chain *Chain[string, chainPayload]
	ctx   context.Context
	now   time.Time
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainSuite))
}

func (s *ChainSuite) SetupTest() {
	s.store = NewInMemoryStore[string, chainPayload]()
	s.seq = sequence.NewMemory()

	mapper, err := identity.NewMapper(identity.NewInMemoryStore(), s.seq)
	s.Require().NoError(err)

	s.chain, err = NewChain[string, chainPayload](s.store, mapper, s.seq, NewMutexRunner())
	s.Require().NoError(err)

	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ChainSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *ChainSuite) TestFirstAppendCreates() {
	token := uuid.New()

	version, outcome, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "alpha", B: "beta"}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)
	s.Equal(OutcomeCreated, outcome)

	s.False(version.ID.IsNil())
	s.NotZero(version.RowID)
	s.Equal(s.now, version.Valid.Start)
	s.True(version.Valid.Open())
	s.True(version.Decision.Open())
	s.True(version.Recorded.Open())
	s.Len(s.store.VersionsOf("A1"), 1)
}

func (s *ChainSuite) TestUnchangedResubmissionIsNoOp() {
	token := uuid.New()
	payload := chainPayload{A: "alpha", B: "beta"}

	first, _, err := s.chain.Append(s.ctx, "A1", payload, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	later := s.at(s.now.Add(time.Hour))
	second, outcome, err := s.chain.Append(later, "A1", payload, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	s.Equal(OutcomeUnchanged, outcome)
	s.Equal(first.RowID, second.RowID, "no new row appended")
	s.Len(s.store.VersionsOf("A1"), 1)
	s.True(s.store.VersionsOf("A1")[0].Recorded.Open(), "current row stays open")
}

func (s *ChainSuite) TestChangedPayloadAppendsVersion() {
	token := uuid.New()

	first, _, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "alpha", B: "beta"}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	changedAt := s.now.Add(time.Hour)
	second, outcome, err := s.chain.Append(s.at(changedAt), "A1", chainPayload{A: "alpha", B: "gamma"}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	s.Equal(OutcomeUpdated, outcome)
	s.Equal(first.ID, second.ID, "business key survives versioning")
	s.Greater(second.RowID, first.RowID)

	rows := s.store.VersionsOf("A1")
	s.Require().Len(rows, 2)
	s.Equal(changedAt, rows[0].Recorded.End, "previous row's transaction time closes at the change instant")
	s.True(rows[0].Valid.Open(), "valid time of the old row is untouched")
	s.True(rows[1].Recorded.Open())
	s.Equal(changedAt, rows[1].Recorded.Start)
}

func (s *ChainSuite) TestNullAndEmptyAreDifferentVersions() {
	token := uuid.New()

	_, _, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "alpha", B: ""}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	_, outcome, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "alpha", nullB: true}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)
	s.Equal(OutcomeUpdated, outcome)
}

func (s *ChainSuite) TestRowIDsIncreaseAcrossKeys() {
	v1, _, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "one"}, uuid.New(), domain.EntityTypeArticle)
	s.Require().NoError(err)
	v2, _, err := s.chain.Append(s.ctx, "A2", chainPayload{A: "two"}, uuid.New(), domain.EntityTypeArticle)
	s.Require().NoError(err)
	v3, _, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "one changed"}, uuid.New(), domain.EntityTypeArticle)
	s.Require().NoError(err)

	s.Greater(v2.RowID, v1.RowID)
	s.Greater(v3.RowID, v2.RowID)
}

func (s *ChainSuite) TestLatestReturnsCurrentVersion() {
	token := uuid.New()
	_, _, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "v1"}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)
	appended, _, err := s.chain.Append(s.ctx, "A1", chainPayload{A: "v2"}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	latest, err := s.chain.Latest(s.ctx, "A1")
	s.Require().NoError(err)
	s.Equal(appended.RowID, latest.RowID)
	s.Equal("v2", latest.Payload.A)

	_, err = s.chain.Latest(s.ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

type failingRunner struct{ err error }

func (r failingRunner) Serializable(context.Context, func(context.Context) error) error {
	return r.err
}

func (s *ChainSuite) TestSerializationFailureIsRetryable() {
	mapper, err := identity.NewMapper(identity.NewInMemoryStore(), s.seq)
	s.Require().NoError(err)

	chain, err := NewChain[string, chainPayload](s.store, mapper, s.seq, failingRunner{err: sentinel.ErrSerialization})
	s.Require().NoError(err)

	_, _, err = chain.Append(s.ctx, "A1", chainPayload{A: "x"}, uuid.New(), domain.EntityTypeArticle)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSerialization))
	s.True(dErrors.Retryable(err))
}

type stuckAllocator struct{}

func (stuckAllocator) Next(context.Context, string) (int64, error) { return 1, nil }

func (s *ChainSuite) TestBackwardsRowIDViolatesInvariant() {
	mapper, err := identity.NewMapper(identity.NewInMemoryStore(), stuckAllocator{})
	s.Require().NoError(err)

	chain, err := NewChain[string, chainPayload](s.store, mapper, stuckAllocator{}, NewMutexRunner())
	s.Require().NoError(err)

	token := uuid.New()
	_, _, err = chain.Append(s.ctx, "A1", chainPayload{A: "v1"}, token, domain.EntityTypeArticle)
	s.Require().NoError(err)

	_, _, err = chain.Append(s.ctx, "A1", chainPayload{A: "v2"}, token, domain.EntityTypeArticle)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
