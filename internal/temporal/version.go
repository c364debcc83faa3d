package temporal

import (
	"context"
	"sync"
	"time"

	"chronicle/pkg/domain"
)

// Payload is the domain-specific field set carried by a versioned row.
// Fingerprint must hash the fields in a fixed order.
type Payload interface {
	Fingerprint() Fingerprint
}

// Version is one physical row of a versioned entity. ID is stable across
// all versions of one logical entity; RowID is unique per physical row. For
// a fixed ID, the row with the maximum RowID is the current version.
type Version[P Payload] struct {
	ID       domain.BusinessKey
	RowID    domain.RowID
	Valid    Period
	Decision Period
	Recorded Period
	Payload  P
}

// Store is the persistence contract of one versioned table, generic over
// the natural key so single-field and composite keys share the protocol.
type Store[K comparable, P Payload] interface {
	// Latest returns the physical row with the highest RowID among rows
	// matching the natural key, or sentinel.ErrNotFound.
	Latest(ctx context.Context, key K) (Version[P], error)

	// Insert appends a new physical row.
	Insert(ctx context.Context, key K, version Version[P]) error

	// CloseRecorded rewrites the row's transaction-time upper bound from
	// infinity to at, leaving the lower bound untouched. The only mutation
	// the protocol ever performs on an existing row.
	CloseRecorded(ctx context.Context, id domain.BusinessKey, rowID domain.RowID, at time.Time) error
}

// Runner executes the read-decide-write sequence of an append under the
// strictest isolation the backing store offers.
type Runner interface {
	Serializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MutexRunner serializes executions with a lock. The in-memory stores are
// trivially serializable under it.
type MutexRunner struct {
	mu sync.Mutex
}

func NewMutexRunner() *MutexRunner {
	return &MutexRunner{}
}

func (r *MutexRunner) Serializable(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
