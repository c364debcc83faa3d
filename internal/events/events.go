// Package events defines the version-change notification port. The store is
// fed by periodic full reloads from upstream source systems; only genuine
// changes make it past the fingerprint check, so the published stream is
// exactly the real change history.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chronicle/pkg/domain"
)

// Outcome of an append as seen by downstream consumers. Unchanged
// resubmissions are never published.
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
)

// VersionChange describes one new physical row in a versioned table.
// Consumers dedupe on (Entity, RowID).
type VersionChange struct {
	Entity      string             `json:"entity"`
	NaturalKey  string             `json:"natural_key"`
	BusinessKey domain.BusinessKey `json:"business_key"`
	RowID       domain.RowID       `json:"row_id"`
	Outcome     string             `json:"outcome"`
	Token       uuid.UUID          `json:"token"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

//go:generate mockgen -source=events.go -destination=mocks/mocks.go -package=mocks

// Publisher delivers version-change notifications.
type Publisher interface {
	PublishVersionChange(ctx context.Context, change VersionChange) error
}

// Nop is the default publisher when no broker is configured.
type Nop struct{}

func (Nop) PublishVersionChange(context.Context, VersionChange) error { return nil }
