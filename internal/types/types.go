// Package types provides domain models shared across catalogd components.
//
// Wire-format agnostic: the HTTP layer serializes independently, and the
// store layer maps rows with sqlx db tags declared here. Rule structures
// live in rules.go; ID utilities in ids.go import uuid but are isolated
// for selective inclusion.
package types

import (
	"strings"
	"time"
)

// Product is a single catalog entry. Owned by the product store; the
// engine only reads it. Nullable columns map to pointer fields.
type Product struct {
	ID              ProductID `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Tags            string    `db:"tags" json:"tags"`
	Vendor          *string   `db:"vendor" json:"vendor,omitempty"`
	ProductType     *string   `db:"product_type" json:"product_type,omitempty"`
	Price           float64   `db:"price" json:"price"`
	CompareAtPrice  *float64  `db:"compare_at_price" json:"compare_at_price,omitempty"`
	InStock         bool      `db:"in_stock" json:"in_stock"`
	Rating          *float64  `db:"rating" json:"rating,omitempty"`
	ReviewCount     *int      `db:"review_count" json:"review_count,omitempty"`
	BestsellerScore *float64  `db:"bestseller_score" json:"bestseller_score,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// TagSet splits the comma-delimited tag string into discrete tags.
// Empty segments are discarded so ",a,,b," yields {a, b}. The store
// persists tags as one string; matching code must operate on the parsed
// set to avoid accidental duplicate handling.
func (p *Product) TagSet() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// HasVendor reports whether the product has the exact vendor.
func (p *Product) HasVendor(vendor string) bool {
	return p.Vendor != nil && *p.Vendor == vendor
}

// HasProductType reports whether the product has the exact product type.
func (p *Product) HasProductType(productType string) bool {
	return p.ProductType != nil && *p.ProductType == productType
}

// Collection groups products. Smart collections carry a rule and have
// their membership derived by the syncer; manual collections are edited
// externally and never touched by the rule compiler.
type Collection struct {
	ID        CollectionID `db:"id" json:"id"`
	Title     string       `db:"title" json:"title"`
	IsSmart   bool         `db:"is_smart" json:"is_smart"`
	Rule      *string      `db:"rule" json:"rule,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Member is one row of ordered collection membership.
type Member struct {
	CollectionID CollectionID `db:"collection_id"`
	ProductID    ProductID    `db:"product_id"`
	Position     int          `db:"position"`
}

// SignalType identifies one independent relevance heuristic.
type SignalType string

const (
	SignalCollection     SignalType = "collection"
	SignalProductType    SignalType = "product_type"
	SignalTagOverlap     SignalType = "tag_overlap"
	SignalVendor         SignalType = "vendor"
	SignalPriceProximity SignalType = "price_proximity"
)

// Resource limits enforced by the rule compiler. Oversized rules degrade
// per the drop policy rather than failing the sync.
const (
	// MaxRuleConditions caps conditions per composite to bound a single
	// catalog scan's per-product work.
	MaxRuleConditions = 64

	// MaxRuleDepth caps composite nesting. Observed rules are one level
	// deep; the ceiling guards recursive compilation against adversarial
	// input.
	MaxRuleDepth = 8
)
