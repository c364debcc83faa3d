package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"chronicle/internal/vault"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/platform/sentinel"
)

// Interner is the slice of the vault service the key/value layer needs.
type Interner interface {
	Intern(ctx context.Context, value pgtype.Text) (domain.VaultID, error)
	Find(ctx context.Context, value pgtype.Text) (domain.VaultID, bool, error)
	Lookup(ctx context.Context, id domain.VaultID) (pgtype.Text, error)
}

var _ Interner = (*vault.Service)(nil)

// KeyValues is the single-value-per-key service.
type KeyValues struct {
	interner Interner
	store    KeyValueStore
	logger   *slog.Logger
}

type KeyValuesOption func(*KeyValues)

func WithKeyValuesLogger(logger *slog.Logger) KeyValuesOption {
	return func(s *KeyValues) {
		s.logger = logger
	}
}

func NewKeyValues(interner Interner, store KeyValueStore, opts ...KeyValuesOption) (*KeyValues, error) {
	if interner == nil {
		return nil, fmt.Errorf("interner is required")
	}
	if store == nil {
		return nil, fmt.Errorf("key-value store is required")
	}

	svc := &KeyValues{interner: interner, store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// Set interns both strings and upserts the association, replacing any
// previous value. Returns the key's vault id.
func (s *KeyValues) Set(ctx context.Context, key, value string) (domain.VaultID, error) {
	if key == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}

	keyID, err := s.interner.Intern(ctx, text(key))
	if err != nil {
		return 0, err
	}
	valueID, err := s.interner.Intern(ctx, text(value))
	if err != nil {
		return 0, err
	}

	if err := s.store.Upsert(ctx, keyID, valueID); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to set key value")
	}
	return keyID, nil
}

// Get resolves key to its current value. An unknown key or unset association
// yields a null text, not an error.
func (s *KeyValues) Get(ctx context.Context, key string) (pgtype.Text, error) {
	valueID, ok, err := s.GetValueID(ctx, key)
	if err != nil || !ok {
		return pgtype.Text{}, err
	}
	return s.interner.Lookup(ctx, valueID)
}

// GetValueID resolves key to the vault id of its current value. ok is false
// when the key has no association.
func (s *KeyValues) GetValueID(ctx context.Context, key string) (domain.VaultID, bool, error) {
	if key == "" {
		return 0, false, dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}

	// Lookup path must not mint a vault row for an unseen key; the key is
	// interned only on Set.
	keyID, ok, err := s.interner.Find(ctx, text(key))
	if err != nil || !ok {
		return 0, false, err
	}

	valueID, err := s.store.Get(ctx, keyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get key value")
	}
	return valueID, true, nil
}

// KeyMultiValues is the many-values-per-key service.
type KeyMultiValues struct {
	interner Interner
	store    KeyMultiValueStore
	logger   *slog.Logger
}

type KeyMultiValuesOption func(*KeyMultiValues)

func WithKeyMultiValuesLogger(logger *slog.Logger) KeyMultiValuesOption {
	return func(s *KeyMultiValues) {
		s.logger = logger
	}
}

func NewKeyMultiValues(interner Interner, store KeyMultiValueStore, opts ...KeyMultiValuesOption) (*KeyMultiValues, error) {
	if interner == nil {
		return nil, fmt.Errorf("interner is required")
	}
	if store == nil {
		return nil, fmt.Errorf("key-multi-value store is required")
	}

	svc := &KeyMultiValues{interner: interner, store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Add interns both strings and records the pair. Re-adding an existing pair
// is a silent no-op. Returns both vault ids.
func (s *KeyMultiValues) Add(ctx context.Context, key, value string) (domain.VaultID, domain.VaultID, error) {
	if key == "" {
		return 0, 0, dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}

	keyID, err := s.interner.Intern(ctx, text(key))
	if err != nil {
		return 0, 0, err
	}
	valueID, err := s.interner.Intern(ctx, text(value))
	if err != nil {
		return 0, 0, err
	}

	if _, err := s.store.Add(ctx, keyID, valueID); err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add key multi value")
	}
	return keyID, valueID, nil
}

// Values returns every value associated with key.
func (s *KeyMultiValues) Values(ctx context.Context, key string) ([]string, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}

	keyID, err := s.interner.Intern(ctx, text(key))
	if err != nil {
		return nil, err
	}

	valueIDs, err := s.store.Values(ctx, keyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list key multi values")
	}

	values := make([]string, 0, len(valueIDs))
	for _, valueID := range valueIDs {
		value, err := s.interner.Lookup(ctx, valueID)
		if err != nil {
			return nil, err
		}
		values = append(values, value.String)
	}
	return values, nil
}
