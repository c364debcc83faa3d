package kv

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

// PostgresKeyValueStore persists the one-value-per-key map in PostgreSQL.
type PostgresKeyValueStore struct {
	pool *pgxpool.Pool
}

func NewPostgresKeyValueStore(pool *pgxpool.Pool) *PostgresKeyValueStore {
	return &PostgresKeyValueStore{pool: pool}
}

func (s *PostgresKeyValueStore) Upsert(ctx context.Context, keyID, valueID domain.VaultID) error {
	q := postgres.Exec(ctx, s.pool)
	_, err := q.Exec(ctx,
		`INSERT INTO kv_entries (key_id, value_id) VALUES ($1, $2)
		 ON CONFLICT (key_id) DO UPDATE SET value_id = EXCLUDED.value_id`,
		int64(keyID), int64(valueID))
	if err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

func (s *PostgresKeyValueStore) Get(ctx context.Context, keyID domain.VaultID) (domain.VaultID, error) {
	q := postgres.Exec(ctx, s.pool)

	var valueID int64
	err := q.QueryRow(ctx, `SELECT value_id FROM kv_entries WHERE key_id = $1`, int64(keyID)).Scan(&valueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("get kv entry: %w", err)
	}
	return domain.VaultID(valueID), nil
}

// PostgresKeyMultiValueStore persists the multi-value association in
// PostgreSQL.
type PostgresKeyMultiValueStore struct {
	pool *pgxpool.Pool
}

func NewPostgresKeyMultiValueStore(pool *pgxpool.Pool) *PostgresKeyMultiValueStore {
	return &PostgresKeyMultiValueStore{pool: pool}
}

func (s *PostgresKeyMultiValueStore) Add(ctx context.Context, keyID, valueID domain.VaultID) (bool, error) {
	q := postgres.Exec(ctx, s.pool)
	tag, err := q.Exec(ctx,
		`INSERT INTO kmv_entries (key_id, value_id) VALUES ($1, $2)
		 ON CONFLICT (key_id, value_id) DO NOTHING`,
		int64(keyID), int64(valueID))
	if err != nil {
		return false, fmt.Errorf("add kmv entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresKeyMultiValueStore) Values(ctx context.Context, keyID domain.VaultID) ([]domain.VaultID, error) {
	q := postgres.Exec(ctx, s.pool)

	rows, err := q.Query(ctx,
		`SELECT value_id FROM kmv_entries WHERE key_id = $1 ORDER BY value_id`, int64(keyID))
	if err != nil {
		return nil, fmt.Errorf("list kmv entries: %w", err)
	}
	defer rows.Close()

	var valueIDs []domain.VaultID
	for rows.Next() {
		var valueID int64
		if err := rows.Scan(&valueID); err != nil {
			return nil, fmt.Errorf("scan kmv entry: %w", err)
		}
		valueIDs = append(valueIDs, domain.VaultID(valueID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kmv entries: %w", err)
	}
	return valueIDs, nil
}
