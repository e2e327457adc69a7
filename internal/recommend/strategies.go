// internal/recommend/strategies.go
package recommend

import (
	"context"
	"fmt"

	"github.com/shopkit-io/catalogd/internal/types"
)

/*
 * Suggestion strategies.
 *
 * Four unscored recall strategies plus a mixed mode. Each strategy
 * independently queries the store for up to limit in-stock products;
 * no scoring is attached - strategy results feed the mixer, not the
 * aggregator.
 */

// Strategy selects a suggestion recall.
type Strategy string

const (
	StrategyTrending    Strategy = "trending"
	StrategyBestsellers Strategy = "bestsellers"
	StrategyHighRated   Strategy = "high_rated"
	StrategyNew         Strategy = "new"
	StrategyMixed       Strategy = "mixed"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTrending, StrategyBestsellers, StrategyHighRated, StrategyNew, StrategyMixed:
		return Strategy(s), nil
	default:
		return "", types.ErrInvalidStrategy
	}
}

// SuggestedProducts returns up to limit suggested products for the
// strategy. Mixed mode fetches each feeder strategy at the full limit
// so deduplication can still fill every sub-quota.
func (e *Engine) SuggestedProducts(ctx context.Context, limit int, strategy Strategy) ([]types.Product, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	switch strategy {
	case StrategyTrending:
		return e.store.TrendingProducts(ctx, limit)
	case StrategyBestsellers:
		return e.store.BestsellerProducts(ctx, limit)
	case StrategyHighRated:
		return e.store.TopRatedProducts(ctx, limit)
	case StrategyNew:
		return e.store.NewestProducts(ctx, limit)
	case StrategyMixed:
		return e.mixedSuggestions(ctx, limit)
	default:
		return nil, types.ErrInvalidStrategy
	}
}

// mixedSuggestions gathers the three mixed-mode feeders and merges them.
// High-rated stays a standalone strategy; mixed draws from exactly
// trending, bestsellers, and newest.
func (e *Engine) mixedSuggestions(ctx context.Context, limit int) ([]types.Product, error) {
	trending, err := e.store.TrendingProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("mixed suggestions: %w", err)
	}
	bestsellers, err := e.store.BestsellerProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("mixed suggestions: %w", err)
	}
	newest, err := e.store.NewestProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("mixed suggestions: %w", err)
	}

	return mixSuggestions(limit, trending, bestsellers, newest), nil
}
