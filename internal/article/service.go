package article

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chronicle/internal/article/metrics"
	"chronicle/internal/events"
	"chronicle/internal/sequence"
	"chronicle/internal/temporal"
	"chronicle/pkg/domain"
	dErrors "chronicle/pkg/domain-errors"
	"chronicle/pkg/requestcontext"
)

// Deps carries the collaborators shared by both entity chains.
type Deps struct {
	ArticleStore  temporal.Store[domain.ArticleKey, ArticlePayload]
	SupplierStore temporal.Store[domain.ArticleSupplierKey, SupplierPayload]
	Identity      temporal.Associator
	Sequences     sequence.Allocator
	Runner        temporal.Runner
}

// Service is the write surface for articles and article-supplier relations.
// Each append is one serializable unit of work; callers retry on
// CodeSerialization.
type Service struct {
	articles  *temporal.Chain[domain.ArticleKey, ArticlePayload]
	suppliers *temporal.Chain[domain.ArticleSupplierKey, SupplierPayload]
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
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

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(deps Deps, opts ...Option) (*Service, error) {
	articles, err := temporal.NewChain(deps.ArticleStore, deps.Identity, deps.Sequences, deps.Runner)
	if err != nil {
		return nil, fmt.Errorf("article chain: %w", err)
	}
	suppliers, err := temporal.NewChain(deps.SupplierStore, deps.Identity, deps.Sequences, deps.Runner)
	if err != nil {
		return nil, fmt.Errorf("article supplier chain: %w", err)
	}

	svc := &Service{
		articles:  articles,
		suppliers: suppliers,
		publisher: events.Nop{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("chronicle/article"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AppendArticle records payload as the current version of the article
// identified by key. Token is the upstream delivery's stable UUID for the
// article; it binds the business key on first sight and must not change
// across deliveries.
func (s *Service) AppendArticle(ctx context.Context, key domain.ArticleKey, token uuid.UUID, payload ArticlePayload) (temporal.Version[ArticlePayload], temporal.Outcome, error) {
	if key.IsNil() {
		return temporal.Version[ArticlePayload]{}, "", dErrors.New(dErrors.CodeInvalidInput, "article key must not be empty")
	}
	if token == uuid.Nil {
		return temporal.Version[ArticlePayload]{}, "", dErrors.New(dErrors.CodeInvalidInput, "token must not be nil")
	}

	ctx, span := s.tracer.Start(ctx, "article.Append",
		trace.WithAttributes(attribute.String("article.key", key.String())))
	defer span.End()

	start := time.Now()
	version, outcome, err := s.articles.Append(ctx, key, payload, token, domain.EntityTypeArticle)
	if err != nil {
		return temporal.Version[ArticlePayload]{}, "", err
	}
	s.metrics.RecordAppend(domain.EntityTypeArticle.String(), string(outcome), time.Since(start))
	span.SetAttributes(attribute.String("append.outcome", string(outcome)))

	s.logger.InfoContext(ctx, "article appended",
		"article_key", key.String(),
		"business_key", int64(version.ID),
		"row_id", int64(version.RowID),
		"outcome", string(outcome),
	)

	s.publish(ctx, domain.EntityTypeArticle, key.String(), version.ID, version.RowID, outcome, token)
	return version, outcome, nil
}

// CurrentArticle returns the article's current version.
func (s *Service) CurrentArticle(ctx context.Context, key domain.ArticleKey) (temporal.Version[ArticlePayload], error) {
	if key.IsNil() {
		return temporal.Version[ArticlePayload]{}, dErrors.New(dErrors.CodeInvalidInput, "article key must not be empty")
	}
	version, err := s.articles.Latest(ctx, key)
	if err != nil {
		return temporal.Version[ArticlePayload]{}, dErrors.Wrap(err, dErrors.CodeNotFound, "article not found")
	}
	return version, nil
}

// AppendArticleSupplier records payload as the current version of the
// relation identified by the composite key. The relation versions
// independently of the article it references.
func (s *Service) AppendArticleSupplier(ctx context.Context, key domain.ArticleSupplierKey, token uuid.UUID, payload SupplierPayload) (temporal.Version[SupplierPayload], temporal.Outcome, error) {
	if key.IsNil() {
		return temporal.Version[SupplierPayload]{}, "", dErrors.New(dErrors.CodeInvalidInput, "article and supplier keys must not be empty")
	}
	if token == uuid.Nil {
		return temporal.Version[SupplierPayload]{}, "", dErrors.New(dErrors.CodeInvalidInput, "token must not be nil")
	}

	ctx, span := s.tracer.Start(ctx, "article.AppendSupplier",
		trace.WithAttributes(
			attribute.String("article.key", key.Article.String()),
			attribute.String("supplier.key", key.Supplier.String()),
		))
	defer span.End()

	start := time.Now()
	version, outcome, err := s.suppliers.Append(ctx, key, payload, token, domain.EntityTypeArticleSupplier)
	if err != nil {
		return temporal.Version[SupplierPayload]{}, "", err
	}
	s.metrics.RecordAppend(domain.EntityTypeArticleSupplier.String(), string(outcome), time.Since(start))
	span.SetAttributes(attribute.String("append.outcome", string(outcome)))

	s.logger.InfoContext(ctx, "article supplier appended",
		"article_key", key.Article.String(),
		"supplier_key", key.Supplier.String(),
		"business_key", int64(version.ID),
		"row_id", int64(version.RowID),
		"outcome", string(outcome),
	)

	s.publish(ctx, domain.EntityTypeArticleSupplier, key.String(), version.ID, version.RowID, outcome, token)
	return version, outcome, nil
}

// CurrentArticleSupplier returns the relation's current version.
func (s *Service) CurrentArticleSupplier(ctx context.Context, key domain.ArticleSupplierKey) (temporal.Version[SupplierPayload], error) {
	if key.IsNil() {
		return temporal.Version[SupplierPayload]{}, dErrors.New(dErrors.CodeInvalidInput, "article and supplier keys must not be empty")
	}
	version, err := s.suppliers.Latest(ctx, key)
	if err != nil {
		return temporal.Version[SupplierPayload]{}, dErrors.Wrap(err, dErrors.CodeNotFound, "article supplier not found")
	}
	return version, nil
}

// publish notifies downstream consumers of a new physical row. Unchanged
// appends stay silent. Delivery is best effort; the row is already durable,
// so a broker failure is logged, not surfaced.
func (s *Service) publish(ctx context.Context, entity domain.EntityType, naturalKey string, id domain.BusinessKey, rowID domain.RowID, outcome temporal.Outcome, token uuid.UUID) {
	if outcome == temporal.OutcomeUnchanged {
		return
	}

	change := events.VersionChange{
		Entity:      entity.String(),
		NaturalKey:  naturalKey,
		BusinessKey: id,
		RowID:       rowID,
		Outcome:     string(outcome),
		Token:       token,
		OccurredAt:  requestcontext.Now(ctx),
	}
	if err := s.publisher.PublishVersionChange(ctx, change); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish version change",
			"entity", change.Entity,
			"natural_key", change.NaturalKey,
			"row_id", int64(change.RowID),
			"error", err,
		)
	}
}
