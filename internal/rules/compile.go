// internal/rules/compile.go
package rules

import (
	"github.com/shopkit-io/catalogd/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles types.RuleNode to CompiledRule: a predicate tree the store
 * adapter and syncer run over catalog products. Compilation enforces
 * resource limits and applies the degradation policy for bad input.
 *
 * Degradation policy (compilation never returns an error):
 *   - Unknown leaf type: condition dropped, counted in Dropped
 *   - Missing required value (tag_contains, product_type, vendor): dropped
 *   - price_range without either bound: dropped
 *   - Unknown composite logic: defaults to AND
 *   - Composite with no usable conditions: matches nothing
 *   - Conditions beyond MaxRuleConditions, nesting beyond MaxRuleDepth: dropped
 *
 * Why degrade instead of fail: a malformed condition in one smart
 * collection must not block syncing the rest of the catalog. Callers
 * inspect Dropped and Empty() for logging.
 *
 * Stored rules are one composite of leaves; nesting support exists so
 * deeper trees compile the obvious way, with identical behavior for the
 * one-level case.
 */

// ConditionKind identifies the comparison a compiled condition performs.
type ConditionKind int

const (
	KindAll ConditionKind = iota
	KindTagContains
	KindHasComparePrice
	KindPriceRange
	KindProductType
	KindVendor
	KindInStock
	KindOutOfStock
	KindGroup
)

// Logic combines conditions within a compiled composite.
type Logic int

const (
	LogicAnd Logic = iota
	LogicOr
)

// CompiledCondition is a pre-processed condition ready for matching.
// Group is non-nil only for KindGroup (nested composite).
type CompiledCondition struct {
	Kind     ConditionKind
	Value    string
	MinPrice *float64
	MaxPrice *float64
	Group    *CompiledRule
}

// CompiledRule is a fully pre-processed predicate over products.
type CompiledRule struct {
	Logic      Logic
	Conditions []CompiledCondition
	Dropped    int // conditions discarded during compilation (recursive total)
}

// Empty reports whether the rule can never match any product.
func (r *CompiledRule) Empty() bool {
	return r == nil || len(r.Conditions) == 0
}

// Compile pre-processes a rule tree for evaluation. A nil node compiles
// to the empty predicate. Top-level leaves compile to a single-condition
// AND group so that Match has one code path.
func Compile(node *types.RuleNode) *CompiledRule {
	if node == nil {
		return &CompiledRule{}
	}
	return compileNode(node, 0)
}

// compileNode compiles either a composite or a single leaf at the given
// nesting depth.
func compileNode(node *types.RuleNode, depth int) *CompiledRule {
	if node.Type != types.RuleMultiple {
		compiled := &CompiledRule{Logic: LogicAnd}
		if cc, ok := compileCondition(node, depth); ok {
			compiled.Conditions = append(compiled.Conditions, cc)
		} else {
			compiled.Dropped++
		}
		return compiled
	}

	compiled := &CompiledRule{Logic: parseLogic(node.Logic)}
	for i := range node.Conditions {
		if len(compiled.Conditions) >= types.MaxRuleConditions {
			compiled.Dropped += len(node.Conditions) - i
			break
		}
		cc, ok := compileCondition(&node.Conditions[i], depth+1)
		if !ok {
			compiled.Dropped++
			continue
		}
		if cc.Kind == KindGroup {
			compiled.Dropped += cc.Group.Dropped
		}
		compiled.Conditions = append(compiled.Conditions, cc)
	}
	return compiled
}

// compileCondition validates and pre-processes a single node into a
// condition. Returns false when the node is unusable and must be dropped.
func compileCondition(node *types.RuleNode, depth int) (CompiledCondition, bool) {
	if depth > types.MaxRuleDepth {
		return CompiledCondition{}, false
	}

	switch node.Type {
	case types.RuleAll:
		return CompiledCondition{Kind: KindAll}, true
	case types.RuleTagContains:
		if node.Value == "" {
			return CompiledCondition{}, false
		}
		return CompiledCondition{Kind: KindTagContains, Value: node.Value}, true
	case types.RuleHasComparePrice:
		return CompiledCondition{Kind: KindHasComparePrice}, true
	case types.RulePriceRange:
		if node.MinPrice == nil && node.MaxPrice == nil {
			return CompiledCondition{}, false
		}
		return CompiledCondition{Kind: KindPriceRange, MinPrice: node.MinPrice, MaxPrice: node.MaxPrice}, true
	case types.RuleProductType:
		if node.Value == "" {
			return CompiledCondition{}, false
		}
		return CompiledCondition{Kind: KindProductType, Value: node.Value}, true
	case types.RuleVendor:
		if node.Value == "" {
			return CompiledCondition{}, false
		}
		return CompiledCondition{Kind: KindVendor, Value: node.Value}, true
	case types.RuleInStock:
		return CompiledCondition{Kind: KindInStock}, true
	case types.RuleOutOfStock:
		return CompiledCondition{Kind: KindOutOfStock}, true
	case types.RuleMultiple:
		group := compileNode(node, depth)
		return CompiledCondition{Kind: KindGroup, Group: group}, true
	default:
		// Unknown leaf type: policy decision, not an error
		return CompiledCondition{}, false
	}
}

// parseLogic maps persisted logic names to Logic. Unknown values default
// to AND.
func parseLogic(logic string) Logic {
	if logic == types.LogicOr {
		return LogicOr
	}
	return LogicAnd
}
