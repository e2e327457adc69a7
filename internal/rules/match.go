// internal/rules/match.go
package rules

import (
	"strings"

	"github.com/shopkit-io/catalogd/internal/types"
)

/*
 * Condition matching against typed product rows.
 *
 * Implements the per-product predicate for every condition kind via a
 * single switch. Values are typed columns, so no path resolution or
 * coercion layer sits between the condition and the comparison.
 *
 * Tag matching is a substring test on the raw delimited tag string:
 * "red" matches a product tagged "bordeaux-red" and also one tagged
 * "bored". Deliberately permissive - stored rules rely on the loose
 * match, so tightening to exact-token comparison would change
 * membership. See matchTagContains before "fixing" this.
 *
 * Why function-based: condition kinds share almost no behavior; a
 * switch over nine kinds reads better than nine single-method types.
 */

// Match reports whether the product satisfies the compiled rule.
// An empty rule matches nothing, composites combine conditions with the
// compiled logic, both with short-circuit evaluation.
func (r *CompiledRule) Match(p *types.Product) bool {
	if r.Empty() {
		return false
	}
	if r.Logic == LogicOr {
		for i := range r.Conditions {
			if matchCondition(&r.Conditions[i], p) {
				return true
			}
		}
		return false
	}
	for i := range r.Conditions {
		if !matchCondition(&r.Conditions[i], p) {
			return false
		}
	}
	return true
}

// matchCondition applies one condition to a product.
func matchCondition(c *CompiledCondition, p *types.Product) bool {
	switch c.Kind {
	case KindAll:
		return true
	case KindTagContains:
		return matchTagContains(p, c.Value)
	case KindHasComparePrice:
		return p.CompareAtPrice != nil && *p.CompareAtPrice > p.Price
	case KindPriceRange:
		return matchPriceRange(p.Price, c.MinPrice, c.MaxPrice)
	case KindProductType:
		return p.HasProductType(c.Value)
	case KindVendor:
		return p.HasVendor(c.Value)
	case KindInStock:
		return p.InStock
	case KindOutOfStock:
		return !p.InStock
	case KindGroup:
		return c.Group.Match(p)
	default:
		return false
	}
}

// matchTagContains performs a substring match on the concatenated tag
// string. Matches partial tokens on purpose; see the package comment.
func matchTagContains(p *types.Product, value string) bool {
	return strings.Contains(p.Tags, value)
}

// matchPriceRange checks inclusive bounds; a nil bound is unbounded on
// that side.
func matchPriceRange(price float64, min, max *float64) bool {
	if min != nil && price < *min {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}
