// internal/recommend/rank_test.go
package recommend

import (
	"testing"

	"github.com/shopkit-io/catalogd/internal/types"
)

func productIDs(products []types.Product) []types.ProductID {
	ids := make([]types.ProductID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func assertIDs(t *testing.T, got, want []types.ProductID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRankCandidates_ScoreDescending(t *testing.T) {
	candidates := []Candidate{
		{Product: types.Product{ID: "p1"}, Score: 1.0},
		{Product: types.Product{ID: "p2"}, Score: 4.5},
		{Product: types.Product{ID: "p3"}, Score: 2.0},
	}

	ranked := rankCandidates(candidates, 10)

	want := []types.ProductID{"p2", "p3", "p1"}
	for i := range want {
		if ranked[i].Product.ID != want[i] {
			t.Errorf("ranked[%d] = %v, want %v", i, ranked[i].Product.ID, want[i])
		}
	}
}

func TestRankCandidates_StableTieOrder(t *testing.T) {
	// Equal scores keep first-seen order from recall.
	candidates := []Candidate{
		{Product: types.Product{ID: "p9"}, Score: 2.0},
		{Product: types.Product{ID: "p1"}, Score: 2.0},
		{Product: types.Product{ID: "p5"}, Score: 2.0},
	}

	ranked := rankCandidates(candidates, 10)

	want := []types.ProductID{"p9", "p1", "p5"}
	for i := range want {
		if ranked[i].Product.ID != want[i] {
			t.Errorf("ranked[%d] = %v, want %v", i, ranked[i].Product.ID, want[i])
		}
	}
}

func TestRankCandidates_Truncates(t *testing.T) {
	candidates := []Candidate{
		{Product: types.Product{ID: "p1"}, Score: 3.0},
		{Product: types.Product{ID: "p2"}, Score: 2.0},
		{Product: types.Product{ID: "p3"}, Score: 1.0},
	}

	ranked := rankCandidates(candidates, 2)

	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %v, want 2", len(ranked))
	}
	if ranked[0].Product.ID != "p1" || ranked[1].Product.ID != "p2" {
		t.Errorf("ranked = [%v %v], want [p1 p2]", ranked[0].Product.ID, ranked[1].Product.ID)
	}
}

func mkProducts(ids ...types.ProductID) []types.Product {
	products := make([]types.Product, len(ids))
	for i, id := range ids {
		products[i] = types.Product{ID: id}
	}
	return products
}

func TestMixSuggestions_QuotaSplit(t *testing.T) {
	trending := mkProducts("t1", "t2", "t3", "t4", "t5")
	bestsellers := mkProducts("b1", "b2", "b3", "b4", "b5")
	newest := mkProducts("n1", "n2", "n3", "n4", "n5")

	mixed := mixSuggestions(9, trending, bestsellers, newest)

	assertIDs(t, productIDs(mixed),
		[]types.ProductID{"t1", "t2", "t3", "b1", "b2", "b3", "n1", "n2", "n3"})
}

// A product appearing in both trending and bestsellers occupies only its
// trending slot; the bestsellers quota fills from the next distinct
// product, so the result is still limit unique products.
func TestMixSuggestions_DedupRefillsQuota(t *testing.T) {
	x := types.Product{ID: "x"}

	trending := append(mkProducts("t1", "t2"), x)
	bestsellers := append([]types.Product{x}, mkProducts("b1", "b2", "b3")...)
	newest := mkProducts("n1", "n2", "n3")

	mixed := mixSuggestions(9, trending, bestsellers, newest)

	assertIDs(t, productIDs(mixed),
		[]types.ProductID{"t1", "t2", "x", "b1", "b2", "b3", "n1", "n2", "n3"})
}

func TestMixSuggestions_CeilQuotaTruncatesToLimit(t *testing.T) {
	// limit 10 -> per-strategy quota 4; the merged 12 rows truncate to 10.
	trending := mkProducts("t1", "t2", "t3", "t4", "t5")
	bestsellers := mkProducts("b1", "b2", "b3", "b4", "b5")
	newest := mkProducts("n1", "n2", "n3", "n4", "n5")

	mixed := mixSuggestions(10, trending, bestsellers, newest)

	assertIDs(t, productIDs(mixed),
		[]types.ProductID{"t1", "t2", "t3", "t4", "b1", "b2", "b3", "b4", "n1", "n2"})
}

func TestMixSuggestions_NeverPads(t *testing.T) {
	trending := mkProducts("t1")
	bestsellers := mkProducts("t1", "b1")
	newest := []types.Product{}

	mixed := mixSuggestions(9, trending, bestsellers, newest)

	assertIDs(t, productIDs(mixed), []types.ProductID{"t1", "b1"})
}

func TestMixSuggestions_ShortStrategyYieldsQuotaToNone(t *testing.T) {
	// An undersupplied strategy leaves its quota unfilled; later
	// strategies do not inherit the slack.
	trending := mkProducts("t1")
	bestsellers := mkProducts("b1", "b2", "b3", "b4")
	newest := mkProducts("n1", "n2", "n3", "n4")

	mixed := mixSuggestions(9, trending, bestsellers, newest)

	assertIDs(t, productIDs(mixed),
		[]types.ProductID{"t1", "b1", "b2", "b3", "n1", "n2", "n3"})
}
