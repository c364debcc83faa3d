package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronicle/internal/platform/postgres"
	"chronicle/internal/temporal"
	"chronicle/pkg/domain"
	"chronicle/pkg/platform/sentinel"
)

// period converts scanned range bounds into a Period. An unbounded upper
// comes back as NULL (tstzrange with a null upper) or as the infinity
// timestamp; both mean open-ended.
func period(lo, hi pgtype.Timestamptz) temporal.Period {
	p := temporal.Period{Start: lo.Time}
	if hi.Valid && hi.InfinityModifier == pgtype.Finite {
		p.End = hi.Time
	}
	return p
}

// rangeEnd renders a Period's upper bound as an insert parameter: nil keeps
// the range unbounded.
func rangeEnd(p temporal.Period) *time.Time {
	if p.Open() {
		return nil
	}
	end := p.End
	return &end
}

// ArticlePostgresStore persists article versions in PostgreSQL.
type ArticlePostgresStore struct {
	pool *pgxpool.Pool
}

func NewArticlePostgresStore(pool *pgxpool.Pool) *ArticlePostgresStore {
	return &ArticlePostgresStore{pool: pool}
}

func (s *ArticlePostgresStore) Latest(ctx context.Context, key domain.ArticleKey) (temporal.Version[ArticlePayload], error) {
	q := postgres.Exec(ctx, s.pool)

	var (
		v                      temporal.Version[ArticlePayload]
		id, rowID              int64
		validLo, validHi       pgtype.Timestamptz
		decisionLo, decisionHi pgtype.Timestamptz
		recordedLo, recordedHi pgtype.Timestamptz
	)
	err := q.QueryRow(ctx,
		`SELECT id, row_id, description1, description2, match_code, long_text, article_group,
		        lower(valid_time), upper(valid_time),
		        lower(decision_time), upper(decision_time),
		        lower(db_tx_time), upper(db_tx_time)
		 FROM articles
		 WHERE article_key = $1
		 ORDER BY row_id DESC
		 LIMIT 1`, key.String()).
		Scan(&id, &rowID,
			&v.Payload.Description1, &v.Payload.Description2, &v.Payload.MatchCode,
			&v.Payload.LongText, &v.Payload.Group,
			&validLo, &validHi, &decisionLo, &decisionHi, &recordedLo, &recordedHi)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return temporal.Version[ArticlePayload]{}, sentinel.ErrNotFound
		}
		return temporal.Version[ArticlePayload]{}, fmt.Errorf("load latest article: %w", err)
	}

	v.ID = domain.BusinessKey(id)
	v.RowID = domain.RowID(rowID)
	v.Valid = period(validLo, validHi)
	v.Decision = period(decisionLo, decisionHi)
	v.Recorded = period(recordedLo, recordedHi)
	return v, nil
}

func (s *ArticlePostgresStore) Insert(ctx context.Context, key domain.ArticleKey, v temporal.Version[ArticlePayload]) error {
	q := postgres.Exec(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO articles
		   (id, row_id, article_key, description1, description2, match_code, long_text, article_group,
		    valid_time, decision_time, db_tx_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		         tstzrange($9, $10, '[)'), tstzrange($11, $12, '[)'), tstzrange($13, $14, '[)'))`,
		int64(v.ID), int64(v.RowID), key.String(),
		v.Payload.Description1, v.Payload.Description2, v.Payload.MatchCode,
		v.Payload.LongText, v.Payload.Group,
		v.Valid.Start, rangeEnd(v.Valid),
		v.Decision.Start, rangeEnd(v.Decision),
		v.Recorded.Start, rangeEnd(v.Recorded))
	if err != nil {
		return fmt.Errorf("insert article version: %w", err)
	}
	return nil
}

func (s *ArticlePostgresStore) CloseRecorded(ctx context.Context, id domain.BusinessKey, rowID domain.RowID, at time.Time) error {
	q := postgres.Exec(ctx, s.pool)

	// upper_inf guards closed rows: history is immutable.
	tag, err := q.Exec(ctx,
		`UPDATE articles
		 SET db_tx_time = tstzrange(lower(db_tx_time), $3, '[)')
		 WHERE id = $1 AND row_id = $2 AND upper_inf(db_tx_time)`,
		int64(id), int64(rowID), at)
	if err != nil {
		return fmt.Errorf("close article version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// SupplierPostgresStore persists article-supplier versions in PostgreSQL.
type SupplierPostgresStore struct {
	pool *pgxpool.Pool
}

func NewSupplierPostgresStore(pool *pgxpool.Pool) *SupplierPostgresStore {
	return &SupplierPostgresStore{pool: pool}
}

func (s *SupplierPostgresStore) Latest(ctx context.Context, key domain.ArticleSupplierKey) (temporal.Version[SupplierPayload], error) {
	q := postgres.Exec(ctx, s.pool)

	var (
		v                      temporal.Version[SupplierPayload]
		id, rowID              int64
		validLo, validHi       pgtype.Timestamptz
		decisionLo, decisionHi pgtype.Timestamptz
		recordedLo, recordedHi pgtype.Timestamptz
	)
	err := q.QueryRow(ctx,
		`SELECT id, row_id, description1, description2, unit, price,
		        lower(valid_time), upper(valid_time),
		        lower(decision_time), upper(decision_time),
		        lower(db_tx_time), upper(db_tx_time)
		 FROM article_suppliers
		 WHERE article_key = $1 AND supplier_key = $2
		 ORDER BY row_id DESC
		 LIMIT 1`, key.Article.String(), key.Supplier.String()).
		Scan(&id, &rowID,
			&v.Payload.Description1, &v.Payload.Description2, &v.Payload.Unit, &v.Payload.Price,
			&validLo, &validHi, &decisionLo, &decisionHi, &recordedLo, &recordedHi)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return temporal.Version[SupplierPayload]{}, sentinel.ErrNotFound
		}
		return temporal.Version[SupplierPayload]{}, fmt.Errorf("load latest article supplier: %w", err)
	}

	v.ID = domain.BusinessKey(id)
	v.RowID = domain.RowID(rowID)
	v.Valid = period(validLo, validHi)
	v.Decision = period(decisionLo, decisionHi)
	v.Recorded = period(recordedLo, recordedHi)
	return v, nil
}

func (s *SupplierPostgresStore) Insert(ctx context.Context, key domain.ArticleSupplierKey, v temporal.Version[SupplierPayload]) error {
	q := postgres.Exec(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO article_suppliers
		   (id, row_id, article_key, supplier_key, description1, description2, unit, price,
		    valid_time, decision_time, db_tx_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		         tstzrange($9, $10, '[)'), tstzrange($11, $12, '[)'), tstzrange($13, $14, '[)'))`,
		int64(v.ID), int64(v.RowID), key.Article.String(), key.Supplier.String(),
		v.Payload.Description1, v.Payload.Description2, v.Payload.Unit, v.Payload.Price,
		v.Valid.Start, rangeEnd(v.Valid),
		v.Decision.Start, rangeEnd(v.Decision),
		v.Recorded.Start, rangeEnd(v.Recorded))
	if err != nil {
		return fmt.Errorf("insert article supplier version: %w", err)
	}
	return nil
}

func (s *SupplierPostgresStore) CloseRecorded(ctx context.Context, id domain.BusinessKey, rowID domain.RowID, at time.Time) error {
	q := postgres.Exec(ctx, s.pool)

	tag, err := q.Exec(ctx,
		`UPDATE article_suppliers
		 SET db_tx_time = tstzrange(lower(db_tx_time), $3, '[)')
		 WHERE id = $1 AND row_id = $2 AND upper_inf(db_tx_time)`,
		int64(id), int64(rowID), at)
	if err != nil {
		return fmt.Errorf("close article supplier version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

var (
	_ temporal.Store[domain.ArticleKey, ArticlePayload]          = (*ArticlePostgresStore)(nil)
	_ temporal.Store[domain.ArticleSupplierKey, SupplierPayload] = (*SupplierPostgresStore)(nil)
)
