// Package domain defines the typed identifiers shared by every storage
// component. These are domain primitives: parsing validates at the trust
// boundary so services never see an empty natural key or a nil UUID.
package domain

import (
	"fmt"
	"strings"
)

// VaultID identifies one deduplicated string in the vault.
type VaultID int64

// NullStringID is the reserved vault id for the null marker row seeded at
// schema initialization. Interning a null string returns it without a store
// round trip.
const NullStringID VaultID = 1

// IsNil returns true for the zero VaultID, which is never assigned.
func (v VaultID) IsNil() bool { return v == 0 }

// BusinessKey is the stable internal surrogate identity of an entity,
// persistent across all of its versions. Keys are minted from a single
// sequence shared by all entity kinds.
type BusinessKey int64

// IsNil returns true for the zero BusinessKey, which is never assigned.
func (k BusinessKey) IsNil() bool { return k == 0 }

// RowID distinguishes successive physical rows of one logical entity. Row
// ids come from one global sequence, so they are strictly increasing in
// insertion order across all versioned tables and are never reused.
type RowID int64

// EntityType tags which versioned table a business key was minted for.
type EntityType int32

const (
	EntityTypeArticle         EntityType = 1
	EntityTypeArticleSupplier EntityType = 2
)

// String returns a stable label for metrics and event payloads.
func (t EntityType) String() string {
	switch t {
	case EntityTypeArticle:
		return "article"
	case EntityTypeArticleSupplier:
		return "article_supplier"
	default:
		return fmt.Sprintf("entity_type(%d)", int32(t))
	}
}

// ArticleKey is the externally meaningful article identifier.
type ArticleKey string

// ParseArticleKey validates and returns an ArticleKey.
func ParseArticleKey(s string) (ArticleKey, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("article key must not be empty")
	}
	return ArticleKey(trimmed), nil
}

func (k ArticleKey) String() string { return string(k) }

// IsNil returns true if the key is empty.
func (k ArticleKey) IsNil() bool { return k == "" }

// SupplierKey is the externally meaningful supplier identifier.
type SupplierKey string

// ParseSupplierKey validates and returns a SupplierKey.
func ParseSupplierKey(s string) (SupplierKey, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("supplier key must not be empty")
	}
	return SupplierKey(trimmed), nil
}

func (k SupplierKey) String() string { return string(k) }

// IsNil returns true if the key is empty.
func (k SupplierKey) IsNil() bool { return k == "" }

// ArticleSupplierKey is the composite natural key of an article-supplier
// relation.
type ArticleSupplierKey struct {
	Article  ArticleKey
	Supplier SupplierKey
}

// IsNil returns true if either half of the composite key is empty.
func (k ArticleSupplierKey) IsNil() bool {
	return k.Article.IsNil() || k.Supplier.IsNil()
}

func (k ArticleSupplierKey) String() string {
	return string(k.Article) + "/" + string(k.Supplier)
}

// Names of the shared sequence generators. The underlying allocator never
// reuses or rolls back an issued value; gaps are acceptable, duplicates are
// not.
const (
	SeqBusinessKey = "business_key_seq"
	SeqRowID       = "row_id_seq"
)
