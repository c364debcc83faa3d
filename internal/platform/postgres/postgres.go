// Package postgres holds the PostgreSQL plumbing shared by every store:
// pool construction, the embedded schema, error classification, and the
// serializable transaction runner.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronicle/pkg/platform/tx"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the embedded relational schema. Exposed for the migrate
// command and the integration test harness.
func Schema() string { return schemaSQL }

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema through database/sql. The migrate
// command opens its connection with the lib/pq driver.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Querier is the subset of pgx shared by pools and transactions. Stores
// query through it so the same code runs inside and outside the serializable
// runner.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Exec returns the context-carried transaction if one is open, otherwise the
// pool.
func Exec(ctx context.Context, pool *pgxpool.Pool) Querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return pool
}

// SQLSTATE codes the stores branch on.
const (
	codeUniqueViolation      = "23505"
	codeExclusionViolation   = "23P01"
	codeSerializationFailure = "40001"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
// Intern and associate treat this as "someone else won" and re-select.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsSerializationFailure reports whether err is a serialization failure or an
// exclusion constraint collision between concurrent appenders. Both mean the
// read-decide-write raced and the caller must retry the whole transaction.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeExclusionViolation
}
