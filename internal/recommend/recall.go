// internal/recommend/recall.go
package recommend

import (
	"context"
	"math"

	"github.com/shopkit-io/catalogd/internal/types"
)

/*
 * Candidate recall: five independent weak signals.
 *
 * Each recall issues its own store read, excludes the source product
 * and out-of-stock products (in SQL, not as a post-filter), and caps
 * its own result at the recall limit. Weights are fixed and additive;
 * a product surfaced by several signals accumulates every weight
 * during aggregation.
 *
 * Recall order is fixed (collection, type, tags, vendor, price) so the
 * aggregator's first-seen ordering - the tiebreak for equal scores -
 * is deterministic across identical requests.
 */

// Fixed signal weights. Multi-signal relevance compounds by addition.
const (
	weightCollection     = 3.0
	weightProductType    = 2.5
	weightTagOverlap     = 2.0
	weightVendor         = 1.5
	weightPriceProximity = 1.0
)

// Price proximity band relative to the source price, inclusive.
const (
	priceBandLow  = 0.7
	priceBandHigh = 1.3
)

// recallAll runs every signal recall in fixed order and concatenates
// the raw rows. Any store failure aborts the whole recall: callers
// return empty rather than rank partial data.
func (e *Engine) recallAll(ctx context.Context, source *types.Product, limit int) ([]rawCandidate, error) {
	raw := make([]rawCandidate, 0, 5*limit)

	recalls := []func(context.Context, *types.Product, int) ([]rawCandidate, error){
		e.recallSharedCollections,
		e.recallSameType,
		e.recallTagOverlap,
		e.recallSameVendor,
		e.recallPriceProximity,
	}
	for _, recall := range recalls {
		rows, err := recall(ctx, source, limit)
		if err != nil {
			return nil, err
		}
		raw = append(raw, rows...)
	}
	return raw, nil
}

// recallSharedCollections recalls products sharing at least one
// collection with the source.
func (e *Engine) recallSharedCollections(ctx context.Context, source *types.Product, limit int) ([]rawCandidate, error) {
	products, err := e.store.ProductsInSharedCollections(ctx, source.ID, limit)
	if err != nil {
		return nil, err
	}
	return asRawCandidates(products, types.SignalCollection, weightCollection), nil
}

// recallSameType recalls products with the exact same product type.
// A source without a type contributes nothing.
func (e *Engine) recallSameType(ctx context.Context, source *types.Product, limit int) ([]rawCandidate, error) {
	if source.ProductType == nil || *source.ProductType == "" {
		return nil, nil
	}
	products, err := e.store.ProductsByType(ctx, *source.ProductType, source.ID, limit)
	if err != nil {
		return nil, err
	}
	return asRawCandidates(products, types.SignalProductType, weightProductType), nil
}

// recallTagOverlap recalls products whose tag string contains any one of
// the source's tags as a substring. OR-semantics across tags: a single
// shared tag is enough, no overlap threshold. One store read per source
// tag; duplicates across tag reads collapse here so the signal caps at
// the recall limit like every other.
func (e *Engine) recallTagOverlap(ctx context.Context, source *types.Product, limit int) ([]rawCandidate, error) {
	tags := source.TagSet()
	if len(tags) == 0 {
		return nil, nil
	}

	seen := make(map[types.ProductID]bool, limit)
	var raw []rawCandidate
	for _, tag := range tags {
		if len(raw) >= limit {
			break
		}
		products, err := e.store.ProductsWithTag(ctx, tag, source.ID, limit)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			if len(raw) >= limit {
				break
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			raw = append(raw, rawCandidate{product: p, signal: types.SignalTagOverlap, weight: weightTagOverlap})
		}
	}
	return raw, nil
}

// recallSameVendor recalls products from the exact same vendor.
// A source without a vendor contributes nothing.
func (e *Engine) recallSameVendor(ctx context.Context, source *types.Product, limit int) ([]rawCandidate, error) {
	if source.Vendor == nil || *source.Vendor == "" {
		return nil, nil
	}
	products, err := e.store.ProductsByVendor(ctx, *source.Vendor, source.ID, limit)
	if err != nil {
		return nil, err
	}
	return asRawCandidates(products, types.SignalVendor, weightVendor), nil
}

// recallPriceProximity recalls products priced within the closed band
// [0.7s, 1.3s] around the source price, closest first. Bounds are
// rounded to cents before comparison: 0.7*100 is 70.000000000000006 in
// binary floating point, which would wrongly exclude a product priced
// exactly 70.00.
func (e *Engine) recallPriceProximity(ctx context.Context, source *types.Product, limit int) ([]rawCandidate, error) {
	min := roundToCents(source.Price * priceBandLow)
	max := roundToCents(source.Price * priceBandHigh)

	products, err := e.store.ProductsInPriceBand(ctx, min, max, source.Price, source.ID, limit)
	if err != nil {
		return nil, err
	}
	return asRawCandidates(products, types.SignalPriceProximity, weightPriceProximity), nil
}

// asRawCandidates tags a recalled product list with its signal and weight.
func asRawCandidates(products []types.Product, signal types.SignalType, weight float64) []rawCandidate {
	if len(products) == 0 {
		return nil
	}
	raw := make([]rawCandidate, len(products))
	for i, p := range products {
		raw[i] = rawCandidate{product: p, signal: signal, weight: weight}
	}
	return raw
}

// roundToCents rounds a price to two decimal places.
func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
