package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"chronicle/internal/sequence"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/platform/sentinel"
)

// Mapper resolves or mints business keys for external UUIDs.
type Mapper struct {
	store  Store
	seq    sequence.Allocator
	logger *slog.Logger
}

type Option func(*Mapper)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = logger
	}
}

func NewMapper(store Store, seq sequence.Allocator, opts ...Option) (*Mapper, error) {
	if store == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequence allocator is required")
	}

	m := &Mapper{store: store, seq: seq}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Associate returns the business key for id, minting one on first sight.
// Idempotent: a repeat call returns the identical key. When two callers race
// on an unseen UUID, the loser detects the winner's row and returns its key;
// the losing sequence value is discarded (gaps are acceptable).
func (m *Mapper) Associate(ctx context.Context, id uuid.UUID, entityType domain.EntityType) (domain.BusinessKey, error) {
	if id == uuid.Nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "uuid is required")
	}

	if existing, err := m.store.Find(ctx, id); err == nil {
		return existing.BusinessKey, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity mapping")
	}

	next, err := m.seq.Next(ctx, domain.SeqBusinessKey)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint business key")
	}
	key := domain.BusinessKey(next)

	err = m.store.Insert(ctx, Mapping{ID: id, BusinessKey: key, EntityType: entityType})
	if err == nil {
		if m.logger != nil {
			m.logger.DebugContext(ctx, "associated business key",
				"uuid", id.String(), "business_key", int64(key), "entity_type", entityType.String())
		}
		return key, nil
	}
	if !errors.Is(err, sentinel.ErrConflict) {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert identity mapping")
	}

	// Someone else won the race; their mapping is authoritative.
	winner, err := m.store.Find(ctx, id)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-select identity mapping after conflict")
	}
	return winner.BusinessKey, nil
}
