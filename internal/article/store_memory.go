package article

import (
	"chronicle/internal/temporal"
	"chronicle/pkg/domain"
)

// In-memory instantiations of the shared version store, used by tests and
// single-process setups.

type InMemoryArticleStore = temporal.InMemoryStore[domain.ArticleKey, ArticlePayload]

type InMemorySupplierStore = temporal.InMemoryStore[domain.ArticleSupplierKey, SupplierPayload]

func NewInMemoryArticleStore() *InMemoryArticleStore {
	return temporal.NewInMemoryStore[domain.ArticleKey, ArticlePayload]()
}

func NewInMemorySupplierStore() *InMemorySupplierStore {
	return temporal.NewInMemoryStore[domain.ArticleSupplierKey, SupplierPayload]()
}
