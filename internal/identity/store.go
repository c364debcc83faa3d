// Package identity maps externally supplied UUIDs to internally minted
// surrogate business keys. A UUID maps to exactly one key for its lifetime,
// even when concurrent callers race on the first association.
package identity

import (
	"context"

	"github.com/google/uuid"

	"chronicle/pkg/domain"
)

// Mapping is one UUID-to-business-key association.
type Mapping struct {
	ID          uuid.UUID
	BusinessKey domain.BusinessKey
	EntityType  domain.EntityType
}

// Store persists identity mappings.
type Store interface {
	// Find returns the mapping for id or sentinel.ErrNotFound.
	Find(ctx context.Context, id uuid.UUID) (Mapping, error)

	// Insert persists a new mapping. A concurrent insert of the same UUID
	// returns sentinel.ErrConflict so the caller can re-select the winner.
	Insert(ctx context.Context, mapping Mapping) error
}
