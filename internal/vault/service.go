package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"chronicle/internal/vault/metrics"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/platform/sentinel"
)

const (
	internResultNull   = "null"
	internResultHit    = "hit"
	internResultInsert = "insert"
)

// Service exposes the interning contract over a Store.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("vault store is required")
	}

	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Intern returns the vault id for value. A null value resolves to the
// reserved sentinel id without touching storage. Safe under concurrent
// execution: duplicate-insert races are recovered inside the store.
func (s *Service) Intern(ctx context.Context, value pgtype.Text) (domain.VaultID, error) {
	if !value.Valid {
		s.metrics.RecordIntern(internResultNull)
		return domain.NullStringID, nil
	}

	id, created, err := s.store.Intern(ctx, value.String)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to intern string")
	}

	if created {
		s.metrics.RecordIntern(internResultInsert)
		if s.logger != nil {
			s.logger.DebugContext(ctx, "interned new string", "vault_id", int64(id))
		}
	} else {
		s.metrics.RecordIntern(internResultHit)
	}
	return id, nil
}

// Find resolves value to its vault id without inserting. ok is false for an
// unseen value; a null value resolves to the sentinel id.
func (s *Service) Find(ctx context.Context, value pgtype.Text) (domain.VaultID, bool, error) {
	if !value.Valid {
		return domain.NullStringID, true, nil
	}

	id, err := s.store.Find(ctx, value.String)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find string")
	}
	return id, true, nil
}

// Lookup resolves a vault id back to its string. The sentinel id resolves to
// a null value, mirroring Intern.
func (s *Service) Lookup(ctx context.Context, id domain.VaultID) (pgtype.Text, error) {
	if id == domain.NullStringID {
		return pgtype.Text{}, nil
	}

	value, err := s.store.Lookup(ctx, id)
	if err != nil {
		return pgtype.Text{}, dErrors.Wrap(err, dErrors.CodeNotFound, "vault id not found")
	}
	return pgtype.Text{String: value, Valid: true}, nil
}
