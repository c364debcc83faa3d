package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronicle/internal/platform/postgres"
	"chronicle/pkg/domain"
	"chronicle/pkg/platform/sentinel"
)

// PostgresStore persists identity mappings in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Find(ctx context.Context, id uuid.UUID) (Mapping, error) {
	q := postgres.Exec(ctx, s.pool)

	var (
		businessKey int64
		entityType  int32
	)
	err := q.QueryRow(ctx,
		`SELECT business_key, entity_type FROM identity_mappings WHERE id = $1`, id).
		Scan(&businessKey, &entityType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Mapping{}, sentinel.ErrNotFound
		}
		return Mapping{}, fmt.Errorf("find identity mapping: %w", err)
	}
	return Mapping{
		ID:          id,
		BusinessKey: domain.BusinessKey(businessKey),
		EntityType:  domain.EntityType(entityType),
	}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, mapping Mapping) error {
	q := postgres.Exec(ctx, s.pool)

	tag, err := q.Exec(ctx,
		`INSERT INTO identity_mappings (id, business_key, entity_type) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		mapping.ID, int64(mapping.BusinessKey), int32(mapping.EntityType))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			// business_key collision; cannot happen with sequence-minted keys
			// but is still a conflict, not an infrastructure failure.
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert identity mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrConflict
	}
	return nil
}
