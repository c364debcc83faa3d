package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronicle/pkg/platform/sentinel"
	"chronicle/pkg/platform/tx"
)

// Runner executes a function inside one serializable transaction. The
// transaction is carried in the context, so every store call made by fn
// joins it via Exec. The append protocol is a read-decide-write sequence and
// anything weaker than serializable admits write skew between concurrent
// appenders of the same natural key.
type Runner struct {
	pool *pgxpool.Pool
}

// NewRunner constructs a serializable runner over the pool.
func NewRunner(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

// Serializable runs fn inside a serializable transaction. Serialization
// failures surface as sentinel.ErrSerialization; the caller owns the retry,
// since retrying requires re-running the whole calling operation.
func (r *Runner) Serializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	pgTx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin serializable tx: %w", err)
	}
	defer func() {
		_ = pgTx.Rollback(ctx)
	}()

	if err := fn(tx.WithTx(ctx, pgTx)); err != nil {
		if IsSerializationFailure(err) {
			return fmt.Errorf("%w: %v", sentinel.ErrSerialization, err)
		}
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		if IsSerializationFailure(err) {
			return fmt.Errorf("%w: %v", sentinel.ErrSerialization, err)
		}
		return fmt.Errorf("commit serializable tx: %w", err)
	}
	return nil
}
