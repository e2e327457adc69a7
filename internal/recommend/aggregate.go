// internal/recommend/aggregate.go
package recommend

import "github.com/shopkit-io/catalogd/internal/types"

/*
 * Score aggregation.
 *
 * Groups raw recall rows by product identity, accumulating one weight
 * per distinct matching signal and recording the signal set for
 * explainability. Quality bonuses apply once per product after
 * grouping, regardless of how many signals matched.
 *
 * Candidate order is first-seen order across the recall rows; the
 * ranker's stable sort preserves it for equal scores.
 */

// Quality bonus thresholds and amounts.
const (
	bonusRatingThreshold = 4.5
	bonusRatingAmount    = 0.5

	bonusReviewThreshold = 50
	bonusReviewAmount    = 0.3
)

// aggregate deduplicates raw recall rows into scored candidates.
func aggregate(raw []rawCandidate) []Candidate {
	index := make(map[types.ProductID]int, len(raw))
	candidates := make([]Candidate, 0, len(raw))

	for _, row := range raw {
		i, ok := index[row.product.ID]
		if !ok {
			index[row.product.ID] = len(candidates)
			candidates = append(candidates, Candidate{
				Product: row.product,
				Signals: []types.SignalType{row.signal},
				Score:   row.weight,
			})
			continue
		}
		// A signal counts once per product even if a recall source
		// surfaced the same row twice.
		if hasSignal(candidates[i].Signals, row.signal) {
			continue
		}
		candidates[i].Signals = append(candidates[i].Signals, row.signal)
		candidates[i].Score += row.weight
	}

	for i := range candidates {
		candidates[i].Score += qualityBonus(&candidates[i].Product)
	}
	return candidates
}

// qualityBonus returns the one-shot bonus for well-reviewed products.
// Missing rating or review count simply fails to qualify; not an error.
func qualityBonus(p *types.Product) float64 {
	bonus := 0.0
	if p.Rating != nil && *p.Rating >= bonusRatingThreshold {
		bonus += bonusRatingAmount
	}
	if p.ReviewCount != nil && *p.ReviewCount >= bonusReviewThreshold {
		bonus += bonusReviewAmount
	}
	return bonus
}

func hasSignal(signals []types.SignalType, signal types.SignalType) bool {
	for _, s := range signals {
		if s == signal {
			return true
		}
	}
	return false
}
