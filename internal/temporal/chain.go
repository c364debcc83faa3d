package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chronicle/internal/sequence"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/platform/sentinel"
	"chronicle/pkg/requestcontext"
)

// Outcome classifies what an append did.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Associator resolves or mints a business key for an external UUID.
type Associator interface {
	Associate(ctx context.Context, id uuid.UUID, entityType domain.EntityType) (domain.BusinessKey, error)
}

// Chain is the shared append-with-change-detection protocol. Entity tables
// specialize it with their natural key type and payload field set.
type Chain[K comparable, P Payload] struct {
	store    Store[K, P]
	identity Associator
	seq      sequence.Allocator
	runner   Runner
}

func NewChain[K comparable, P Payload](store Store[K, P], identity Associator, seq sequence.Allocator, runner Runner) (*Chain[K, P], error) {
	if store == nil {
		return nil, fmt.Errorf("version store is required")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity associator is required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequence allocator is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	return &Chain[K, P]{store: store, identity: identity, seq: seq, runner: runner}, nil
}

// Append records payload as the current version of the entity identified by
// key. A never-seen key creates the entity; an unchanged fingerprint is a
// no-op; a changed one closes the current row's transaction time and appends
// a fresh row under the same business key. Returns the current version after
// the call (the latest row for unchanged resubmissions). The whole
// read-decide-write runs inside one serializable execution; a serialization
// failure surfaces as CodeSerialization and the caller owns the retry.
func (c *Chain[K, P]) Append(ctx context.Context, key K, payload P, token uuid.UUID, entityType domain.EntityType) (Version[P], Outcome, error) {
	var (
		outcome Outcome
		result  Version[P]
	)

	err := c.runner.Serializable(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)

		latest, err := c.store.Latest(ctx, key)
		if err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				return fmt.Errorf("load latest version: %w", err)
			}
			outcome = OutcomeCreated
			result, err = c.create(ctx, key, payload, token, entityType, now)
			return err
		}

		if latest.Payload.Fingerprint() == payload.Fingerprint() {
			outcome = OutcomeUnchanged
			result = latest
			return nil
		}
		outcome = OutcomeUpdated
		result, err = c.update(ctx, key, latest, payload, now)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrSerialization) {
			return Version[P]{}, "", dErrors.Wrap(err, dErrors.CodeSerialization, "concurrent append on the same natural key")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return Version[P]{}, "", err
		}
		return Version[P]{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "append failed")
	}
	return result, outcome, nil
}

// Latest returns the current version for key outside of any append.
func (c *Chain[K, P]) Latest(ctx context.Context, key K) (Version[P], error) {
	return c.store.Latest(ctx, key)
}

func (c *Chain[K, P]) create(ctx context.Context, key K, payload P, token uuid.UUID, entityType domain.EntityType, now time.Time) (Version[P], error) {
	id, err := c.identity.Associate(ctx, token, entityType)
	if err != nil {
		return Version[P]{}, err
	}

	rowID, err := c.nextRowID(ctx)
	if err != nil {
		return Version[P]{}, err
	}

	version := Version[P]{
		ID:       id,
		RowID:    rowID,
		Valid:    OpenFrom(now),
		Decision: OpenFrom(now),
		Recorded: OpenFrom(now),
		Payload:  payload,
	}
	if err := c.store.Insert(ctx, key, version); err != nil {
		return Version[P]{}, fmt.Errorf("insert first version: %w", err)
	}
	return version, nil
}

func (c *Chain[K, P]) update(ctx context.Context, key K, latest Version[P], payload P, now time.Time) (Version[P], error) {
	rowID, err := c.nextRowID(ctx)
	if err != nil {
		return Version[P]{}, err
	}
	if rowID <= latest.RowID {
		return Version[P]{}, dErrors.New(dErrors.CodeInvariantViolation, "row id sequence went backwards")
	}

	if err := c.store.CloseRecorded(ctx, latest.ID, latest.RowID, now); err != nil {
		return Version[P]{}, fmt.Errorf("close previous version: %w", err)
	}

	version := Version[P]{
		ID:       latest.ID,
		RowID:    rowID,
		Valid:    OpenFrom(now),
		Decision: OpenFrom(now),
		Recorded: OpenFrom(now),
		Payload:  payload,
	}
	if err := c.store.Insert(ctx, key, version); err != nil {
		return Version[P]{}, fmt.Errorf("insert new version: %w", err)
	}
	return version, nil
}

func (c *Chain[K, P]) nextRowID(ctx context.Context) (domain.RowID, error) {
	next, err := c.seq.Next(ctx, domain.SeqRowID)
	if err != nil {
		return 0, fmt.Errorf("mint row id: %w", err)
	}
	return domain.RowID(next), nil
}
