// internal/rules/evaluate.go
package rules

import (
	"sort"

	"github.com/shopkit-io/catalogd/internal/types"
)

/*
 * Rule evaluation over catalog snapshots.
 *
 * Evaluate filters a product snapshot through a compiled rule and
 * returns the matching IDs in evaluation order. Determinism contract:
 * for a fixed snapshot and fixed rule, repeated evaluation yields an
 * identical ordered ID list. The store adapter hands snapshots over in
 * ID-ascending order; Evaluate re-sorts defensively so the contract
 * holds for any caller-built snapshot too.
 *
 * Evaluation is pure: no store access, no process state, which keeps
 * the syncer's scan-then-write window as small as one read plus one
 * transactional write.
 */

// Evaluate returns the IDs of snapshot products matching the rule, in
// stable ID-ascending order. The snapshot slice is not modified.
func Evaluate(rule *CompiledRule, snapshot []types.Product) []types.ProductID {
	if rule.Empty() || len(snapshot) == 0 {
		return nil
	}

	ordered := make([]*types.Product, len(snapshot))
	for i := range snapshot {
		ordered[i] = &snapshot[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	var ids []types.ProductID
	for _, p := range ordered {
		if rule.Match(p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
