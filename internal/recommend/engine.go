// Package recommend implements the related-products and suggested-
// products engine: multi-signal candidate recall, weighted score
// aggregation, and ranking/mixing.
//
// All operations are read-only and stateless; each request reads its
// own view of the store with no locking. Cross-query snapshot isolation
// is not required - slight staleness between two reads within one
// request is acceptable.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopkit-io/catalogd/internal/store"
	"github.com/shopkit-io/catalogd/internal/types"
)

// Engine produces related-products and suggested-products lists.
type Engine struct {
	store *store.Store
	log   *zap.Logger
}

// NewEngine creates an engine over the store.
func NewEngine(st *store.Store, log *zap.Logger) *Engine {
	return &Engine{store: st, log: log}
}

// Candidate is one recalled product with its accumulated relevance
// score and the distinct signals that matched it. Transient: created
// and discarded within a single request, never persisted.
type Candidate struct {
	Product types.Product
	Signals []types.SignalType
	Score   float64
}

// rawCandidate is one recall row before aggregation.
type rawCandidate struct {
	product types.Product
	signal  types.SignalType
	weight  float64
}

// RelatedOptions tunes a related-products request. Signal weights are
// fixed and not configurable at call time.
type RelatedOptions struct {
	// RecallLimit caps each signal's recall independently.
	// Zero means the request limit; the aggregator may therefore see up
	// to five times this many raw rows.
	RecallLimit int
}

// RelatedProducts returns up to limit products related to the given
// product, ranked by accumulated multi-signal score.
//
// A missing source product yields an empty list and no error:
// recommendation absence is a valid outcome. A store failure yields an
// empty result plus the error - never partial data.
func (e *Engine) RelatedProducts(ctx context.Context, id types.ProductID, limit int, opts *RelatedOptions) ([]types.Product, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	source, err := e.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrProductNotFound) {
			e.log.Debug("related products: source product absent",
				zap.String("product_id", string(id)))
			return nil, nil
		}
		return nil, fmt.Errorf("related products for %s: %w", id, err)
	}

	recallLimit := limit
	if opts != nil && opts.RecallLimit > 0 {
		recallLimit = opts.RecallLimit
	}

	raw, err := e.recallAll(ctx, source, recallLimit)
	if err != nil {
		return nil, fmt.Errorf("related products for %s: %w", id, err)
	}

	ranked := rankCandidates(aggregate(raw), limit)

	products := make([]types.Product, len(ranked))
	for i := range ranked {
		products[i] = ranked[i].Product
	}
	return products, nil
}

// RelatedCandidates is RelatedProducts with scores and matched signals
// retained, for callers that surface ranking explanations.
func (e *Engine) RelatedCandidates(ctx context.Context, id types.ProductID, limit int, opts *RelatedOptions) ([]Candidate, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	source, err := e.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrProductNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("related candidates for %s: %w", id, err)
	}

	recallLimit := limit
	if opts != nil && opts.RecallLimit > 0 {
		recallLimit = opts.RecallLimit
	}

	raw, err := e.recallAll(ctx, source, recallLimit)
	if err != nil {
		return nil, fmt.Errorf("related candidates for %s: %w", id, err)
	}

	return rankCandidates(aggregate(raw), limit), nil
}
