// Package vault implements the deduplicated string vault: each distinct
// string is stored exactly once and referenced by a compact integer id.
// Rows are append-only and never mutated, which is what makes the id→value
// association safely cacheable.
package vault

import (
	"context"

	"chronicle/pkg/domain"
)

// Store is the persistence contract for vault entries.
type Store interface {
	// Intern returns the id for value, inserting it first if unseen.
	// created reports whether this call inserted the row. A concurrent
	// duplicate insert is resolved internally by re-selecting the winner;
	// it never surfaces as an error.
	Intern(ctx context.Context, value string) (id domain.VaultID, created bool, err error)

	// Find returns the id for value or sentinel.ErrNotFound.
	Find(ctx context.Context, value string) (domain.VaultID, error)

	// Lookup returns the stored string for id or sentinel.ErrNotFound.
	Lookup(ctx context.Context, id domain.VaultID) (string, error)
}

// Cache is a best-effort value-to-id lookaside used by CachedStore.
// Implementations must never fail the caller: a miss is just a miss.
type Cache interface {
	Get(ctx context.Context, key string) (int64, bool)
	Set(ctx context.Context, key string, id int64)
}
