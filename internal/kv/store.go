// Package kv builds key/value and key/multi-value indirection on top of the
// string vault: both sides of every association are vault ids, never raw
// strings. The single-value map is last-write-wins with no history, which is
// what separates it from the bi-temporal tables.
package kv

import (
	"context"

	"chronicle/pkg/domain"
)

// KeyValueStore persists the one-value-per-key map.
type KeyValueStore interface {
	// Upsert sets the association, replacing any previous value id.
	Upsert(ctx context.Context, keyID, valueID domain.VaultID) error

	// Get returns the current value id or sentinel.ErrNotFound.
	Get(ctx context.Context, keyID domain.VaultID) (domain.VaultID, error)
}

// KeyMultiValueStore persists the many-values-per-key association.
type KeyMultiValueStore interface {
	// Add inserts the pair; a duplicate pair is a silent no-op.
	// added reports whether a new association was stored.
	Add(ctx context.Context, keyID, valueID domain.VaultID) (added bool, err error)

	// Values returns all value ids for a key, in a stable order.
	Values(ctx context.Context, keyID domain.VaultID) ([]domain.VaultID, error)
}
