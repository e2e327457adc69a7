// internal/recommend/rank.go
package recommend

import (
	"sort"

	"github.com/shopkit-io/catalogd/internal/types"
)

/*
 * Ranking and mixing.
 *
 * Related-products mode sorts candidates by score descending; the sort
 * is stable so equal scores keep first-discovered order - there is no
 * secondary sort key.
 *
 * Mixed-suggestion mode carries no per-product scores: the limit splits
 * into ceil(limit/3) sub-quotas drawn from trending, bestsellers, and
 * newest in that fixed priority order. Each quota is filled with
 * products not already taken by an earlier strategy, then the merged
 * list truncates to the limit. Fewer than limit unique products across
 * the three strategies means a short result - never padded.
 */

// rankCandidates sorts by score descending (stable) and truncates.
func rankCandidates(candidates []Candidate, limit int) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// mixSuggestions merges the three strategy lists under per-strategy
// quotas with first-occurrence dedup.
func mixSuggestions(limit int, trending, bestsellers, newest []types.Product) []types.Product {
	quota := (limit + 2) / 3

	seen := make(map[types.ProductID]bool, limit)
	mixed := make([]types.Product, 0, limit)

	for _, list := range [][]types.Product{trending, bestsellers, newest} {
		taken := 0
		for _, p := range list {
			if taken >= quota {
				break
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			mixed = append(mixed, p)
			taken++
		}
	}

	if len(mixed) > limit {
		mixed = mixed[:limit]
	}
	return mixed
}
