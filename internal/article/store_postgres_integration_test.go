//go:build integration

package article_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"chronicle/internal/article"
	"chronicle/internal/identity"
	"chronicle/internal/platform/postgres"
	"chronicle/internal/sequence"
	"chronicle/internal/temporal"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/testutil/containers"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

type PostgresServiceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	service  *article.Service
}

func TestPostgresServiceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresServiceSuite))
}

func (s *PostgresServiceSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	mapper, err := identity.NewMapper(identity.NewPostgresStore(s.postgres.Pool), sequence.NewPostgres(s.postgres.Pool))
	s.Require().NoError(err)

	s.service, err = article.NewService(article.Deps{
		ArticleStore:  article.NewArticlePostgresStore(s.postgres.Pool),
		SupplierStore: article.NewSupplierPostgresStore(s.postgres.Pool),
		Identity:      mapper,
		Sequences:     sequence.NewPostgres(s.postgres.Pool),
		Runner:        postgres.NewRunner(s.postgres.Pool),
	})
	s.Require().NoError(err)
}

func (s *PostgresServiceSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresServiceSuite) payload(desc string) article.ArticlePayload {
	return article.ArticlePayload{
		Description1: text(desc),
		Description2: text("desc2"),
		MatchCode:    text("code"),
		LongText:     pgtype.Text{},
		Group:        text("grp"),
	}
}

func (s *PostgresServiceSuite) TestLifecycleAgainstPostgres() {
	ctx := context.Background()
	key := domain.ArticleKey("A1")
	token := uuid.New()

	created, outcome, err := s.service.AppendArticle(ctx, key, token, s.payload("desc1"))
	s.Require().NoError(err)
	s.Equal(temporal.OutcomeCreated, outcome)

	_, outcome, err = s.service.AppendArticle(ctx, key, token, s.payload("desc1"))
	s.Require().NoError(err)
	s.Equal(temporal.OutcomeUnchanged, outcome)

	updated, outcome, err := s.service.AppendArticle(ctx, key, token, s.payload("desc1-CHANGED"))
	s.Require().NoError(err)
	s.Equal(temporal.OutcomeUpdated, outcome)
	s.Equal(created.ID, updated.ID)
	s.Greater(updated.RowID, created.RowID)

	var total, open int
	s.Require().NoError(s.postgres.Pool.QueryRow(ctx,
		"SELECT count(*) FROM articles WHERE article_key = $1", key.String()).Scan(&total))
	s.Require().NoError(s.postgres.Pool.QueryRow(ctx,
		"SELECT count(*) FROM articles WHERE article_key = $1 AND upper_inf(db_tx_time)", key.String()).Scan(&open))
	s.Equal(2, total)
	s.Equal(1, open, "exactly one row stays open in transaction time")

	current, err := s.service.CurrentArticle(ctx, key)
	s.Require().NoError(err)
	s.Equal("desc1-CHANGED", current.Payload.Description1.String)
	s.False(current.Payload.LongText.Valid, "null round-trips as null")
	s.True(current.Recorded.Open())
}

func (s *PostgresServiceSuite) TestSupplierRelationAgainstPostgres() {
	ctx := context.Background()
	key := domain.ArticleSupplierKey{Article: "A1", Supplier: "S1"}
	token := uuid.New()

	p := article.SupplierPayload{Description1: text("bolt"), Unit: text("pcs"), Price: text("0.10")}
	_, outcome, err := s.service.AppendArticleSupplier(ctx, key, token, p)
	s.Require().NoError(err)
	s.Equal(temporal.OutcomeCreated, outcome)

	p.Price = text("0.12")
	_, outcome, err = s.service.AppendArticleSupplier(ctx, key, token, p)
	s.Require().NoError(err)
	s.Equal(temporal.OutcomeUpdated, outcome)

	current, err := s.service.CurrentArticleSupplier(ctx, key)
	s.Require().NoError(err)
	s.Equal("0.12", current.Payload.Price.String)
}

// TestConcurrentAppendsStayConsistent races appends on one fresh key under
// serializable isolation. Losers retry on the serialization code; afterwards
// the chain must have exactly one open row and strictly increasing row ids.
func (s *PostgresServiceSuite) TestConcurrentAppendsStayConsistent() {
	ctx := context.Background()
	key := domain.ArticleKey("contested")
	token := uuid.New()
	const writers = 8

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			payload := s.payload(fmt.Sprintf("desc-%d", i))
			for attempt := 0; attempt < 20; attempt++ {
				_, _, err := s.service.AppendArticle(ctx, key, token, payload)
				if err == nil {
					return nil
				}
				if !dErrors.Retryable(err) {
					return err
				}
				time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
			}
			return fmt.Errorf("append did not converge")
		})
	}
	s.Require().NoError(g.Wait())

	var open, distinctIDs int
	s.Require().NoError(s.postgres.Pool.QueryRow(ctx,
		"SELECT count(*) FROM articles WHERE article_key = $1 AND upper_inf(db_tx_time)", key.String()).Scan(&open))
	s.Require().NoError(s.postgres.Pool.QueryRow(ctx,
		"SELECT count(DISTINCT id) FROM articles WHERE article_key = $1", key.String()).Scan(&distinctIDs))
	s.Equal(1, open)
	s.Equal(1, distinctIDs, "all writers resolved to one business key")
}
