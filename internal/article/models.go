// Package article provides the versioned entity tables for articles and
// article-supplier relations: thin specializations of the shared bi-temporal
// chain, each defining its natural key and payload field set.
package article

import (
	"github.com/jackc/pgx/v5/pgtype"

	"chronicle/internal/temporal"
)

// ArticlePayload is the domain field set of one article version. Fields are
// nullable; null and empty string fingerprint differently.
type ArticlePayload struct {
	Description1 pgtype.Text
	Description2 pgtype.Text
	MatchCode    pgtype.Text
	LongText     pgtype.Text
	Group        pgtype.Text
}

// Fingerprint hashes the payload fields in schema order.
func (p ArticlePayload) Fingerprint() temporal.Fingerprint {
	return temporal.FingerprintFields(p.Description1, p.Description2, p.MatchCode, p.LongText, p.Group)
}

// SupplierPayload is the domain field set of one article-supplier version.
// Price travels as text: upstream feeds deliver strings and no arithmetic is
// performed here; normalizing would silently change fingerprints.
type SupplierPayload struct {
	Description1 pgtype.Text
	Description2 pgtype.Text
	Unit         pgtype.Text
	Price        pgtype.Text
}

// Fingerprint hashes the payload fields in schema order.
func (p SupplierPayload) Fingerprint() temporal.Fingerprint {
	return temporal.FingerprintFields(p.Description1, p.Description2, p.Unit, p.Price)
}
