package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chronicle/internal/platform/postgres"
)

// Postgres allocates from native database sequences. nextval never reissues
// a value, even when the surrounding transaction aborts.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a sequence allocator over the pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	q := postgres.Exec(ctx, p.pool)
	if err := q.QueryRow(ctx, `SELECT nextval($1)`, name).Scan(&next); err != nil {
		return 0, fmt.Errorf("nextval %s: %w", name, err)
	}
	return next, nil
}
