// internal/types/rules.go
package types

import "encoding/json"

/*
 * Domain types for smart-collection rules.
 *
 * Provides the RuleNode tree used by internal/rules for compilation and
 * evaluation. These types mirror the JSON persisted in collections.rule;
 * stored rules are one composite of leaves, but the tree is recursive so
 * composites may nest (behavior for one-level rules is unchanged).
 *
 * Leaf types:
 *   - all: matches every product
 *   - tag_contains: substring match against the tag string (requires value)
 *   - has_compare_price: compare-at price present and above price
 *   - price_range: inclusive bounds, either side optional
 *   - product_type, vendor: exact equality (require value)
 *   - in_stock, out_of_stock: stock flag equality
 *   - multiple: composite of conditions combined with AND or OR
 *
 * Dependencies: encoding/json only.
 */

// Rule leaf type names as persisted in collection rule JSON.
const (
	RuleAll             = "all"
	RuleTagContains     = "tag_contains"
	RuleHasComparePrice = "has_compare_price"
	RulePriceRange      = "price_range"
	RuleProductType     = "product_type"
	RuleVendor          = "vendor"
	RuleInStock         = "in_stock"
	RuleOutOfStock      = "out_of_stock"
	RuleMultiple        = "multiple"
)

// Composite logic names.
const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

// RuleNode is one node of a smart-collection rule tree: either a leaf
// condition or a "multiple" composite holding child conditions.
type RuleNode struct {
	Type       string     `json:"type"`
	Value      string     `json:"value,omitempty"`
	MinPrice   *float64   `json:"minPrice,omitempty"`
	MaxPrice   *float64   `json:"maxPrice,omitempty"`
	Logic      string     `json:"logic,omitempty"`
	Conditions []RuleNode `json:"conditions,omitempty"`
}

// ParseRule decodes a persisted rule JSON document.
// Returns ErrInvalidRule for malformed JSON; semantic problems (unknown
// type, missing value) are not errors here - the compiler degrades them.
func ParseRule(raw string) (*RuleNode, error) {
	var node RuleNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		return nil, ErrInvalidRule
	}
	return &node, nil
}
