package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronicle/internal/platform/postgres"
	"chronicle/pkg/domain"
	"chronicle/pkg/platform/sentinel"
)

// PostgresStore persists vault entries in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed vault store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Intern(ctx context.Context, value string) (domain.VaultID, bool, error) {
	q := postgres.Exec(ctx, s.pool)

	// ON CONFLICT DO NOTHING is the atomic try-insert; no row back means a
	// concurrent interner won and the value is selectable.
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO vault_strings (value) VALUES ($1)
		 ON CONFLICT (value) DO NOTHING
		 RETURNING id`, value).Scan(&id)
	if err == nil {
		return domain.VaultID(id), true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("intern string: %w", err)
	}

	existing, err := s.Find(ctx, value)
	if err != nil {
		return 0, false, fmt.Errorf("intern string re-select: %w", err)
	}
	return existing, false, nil
}

func (s *PostgresStore) Find(ctx context.Context, value string) (domain.VaultID, error) {
	q := postgres.Exec(ctx, s.pool)

	var id int64
	err := q.QueryRow(ctx, `SELECT id FROM vault_strings WHERE value = $1`, value).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("find string: %w", err)
	}
	return domain.VaultID(id), nil
}

func (s *PostgresStore) Lookup(ctx context.Context, id domain.VaultID) (string, error) {
	q := postgres.Exec(ctx, s.pool)

	var value string
	err := q.QueryRow(ctx, `SELECT value FROM vault_strings WHERE id = $1`, int64(id)).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("lookup string: %w", err)
	}
	return value, nil
}
