package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shopkit-io/catalogd/internal/rules"
	"github.com/shopkit-io/catalogd/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection: each sqlite :memory: connection is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	s, err := New(db)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	return s
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }

func insertProduct(t *testing.T, s *Store, p types.Product) {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	_, err := s.DB().Exec(`
		INSERT INTO products (id, title, tags, vendor, product_type, price, compare_at_price,
			in_stock, rating, review_count, bestseller_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Tags, p.Vendor, p.ProductType, p.Price, p.CompareAtPrice,
		p.InStock, p.Rating, p.ReviewCount, p.BestsellerScore, p.CreatedAt)
	if err != nil {
		t.Fatalf("insert product %s: %v", p.ID, err)
	}
}

func insertCollection(t *testing.T, s *Store, c types.Collection) {
	t.Helper()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	_, err := s.DB().Exec(`
		INSERT INTO collections (id, title, is_smart, rule, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.IsSmart, c.Rule, c.CreatedAt)
	if err != nil {
		t.Fatalf("insert collection %s: %v", c.ID, err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	s := newTestStore(t)

	if err := MigrateUp(s.DB()); err != nil {
		t.Fatalf("second MigrateUp() error = %v, want nil", err)
	}

	statuses, err := MigrateStatus(s.DB())
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v, want nil", err)
	}
	for _, st := range statuses {
		if !st.Applied {
			t.Errorf("migration %s not applied", st.ID)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProduct(context.Background(), "missing")
	if !errors.Is(err, types.ErrProductNotFound) {
		t.Errorf("GetProduct() error = %v, want ErrProductNotFound", err)
	}
}

func TestQueryProducts_OrderedByID(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "p3", InStock: true})
	insertProduct(t, s, types.Product{ID: "p1", InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", InStock: false})

	products, err := s.QueryProducts(context.Background(), nil)
	if err != nil {
		t.Fatalf("QueryProducts() error = %v, want nil", err)
	}

	want := []types.ProductID{"p1", "p2", "p3"}
	if len(products) != len(want) {
		t.Fatalf("len = %v, want %v", len(products), len(want))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Errorf("products[%d].ID = %v, want %v", i, products[i].ID, id)
		}
	}
}

func TestQueryProducts_CompiledPredicate(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "p1", Vendor: strPtr("Acme"), Price: 20, InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", Vendor: strPtr("Globex"), Price: 20, InStock: true})

	pred := rules.Compile(&types.RuleNode{Type: types.RuleVendor, Value: "Acme"})

	products, err := s.QueryProducts(context.Background(), pred)
	if err != nil {
		t.Fatalf("QueryProducts() error = %v, want nil", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Errorf("QueryProducts() = %v, want [p1]", products)
	}
}

func TestReplaceCollectionMembership_Positions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertCollection(t, s, types.Collection{ID: "c1"})

	if err := s.ReplaceCollectionMembership(ctx, "c1", []types.ProductID{"p2", "p3", "p1"}); err != nil {
		t.Fatalf("ReplaceCollectionMembership() error = %v, want nil", err)
	}

	members, err := s.CollectionMembers(ctx, "c1")
	if err != nil {
		t.Fatalf("CollectionMembers() error = %v, want nil", err)
	}
	want := []types.ProductID{"p2", "p3", "p1"}
	if len(members) != len(want) {
		t.Fatalf("len(members) = %v, want %v", len(members), len(want))
	}
	for i, id := range want {
		if members[i].ProductID != id {
			t.Errorf("members[%d].ProductID = %v, want %v", i, members[i].ProductID, id)
		}
		if members[i].Position != i {
			t.Errorf("members[%d].Position = %v, want %v", i, members[i].Position, i)
		}
	}
}

func TestReplaceCollectionMembership_RollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertCollection(t, s, types.Collection{ID: "c1"})

	if err := s.ReplaceCollectionMembership(ctx, "c1", []types.ProductID{"p1", "p2"}); err != nil {
		t.Fatalf("initial replace error = %v, want nil", err)
	}

	// Duplicate ID violates the (collection_id, product_id) primary key
	// mid-transaction; the whole replacement must roll back.
	err := s.ReplaceCollectionMembership(ctx, "c1", []types.ProductID{"p3", "p3"})
	if err == nil {
		t.Fatal("ReplaceCollectionMembership() error = nil, want failure")
	}

	members, err := s.CollectionMembers(ctx, "c1")
	if err != nil {
		t.Fatalf("CollectionMembers() error = %v, want nil", err)
	}
	want := []types.ProductID{"p1", "p2"}
	if len(members) != len(want) {
		t.Fatalf("len(members) = %v, want %v (old membership preserved)", len(members), len(want))
	}
	for i, id := range want {
		if members[i].ProductID != id {
			t.Errorf("members[%d].ProductID = %v, want %v", i, members[i].ProductID, id)
		}
	}
}

func TestProductsInPriceBand_OrderedByDistance(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "p1", Price: 95, InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", Price: 101, InStock: true})
	insertProduct(t, s, types.Product{ID: "p3", Price: 80, InStock: true})
	insertProduct(t, s, types.Product{ID: "p4", Price: 100, InStock: false}) // out of stock
	insertProduct(t, s, types.Product{ID: "src", Price: 100, InStock: true})

	products, err := s.ProductsInPriceBand(context.Background(), 70, 130, 100, "src", 10)
	if err != nil {
		t.Fatalf("ProductsInPriceBand() error = %v, want nil", err)
	}

	want := []types.ProductID{"p2", "p1", "p3"}
	if len(products) != len(want) {
		t.Fatalf("len = %v, want %v", len(products), len(want))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Errorf("products[%d].ID = %v, want %v", i, products[i].ID, id)
		}
	}
}

func TestProductsWithTag_SubstringMatch(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "p1", Tags: "summer,red", InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", Tags: "bordeaux-red", InStock: true})
	insertProduct(t, s, types.Product{ID: "p3", Tags: "blue", InStock: true})

	products, err := s.ProductsWithTag(context.Background(), "red", "src", 10)
	if err != nil {
		t.Fatalf("ProductsWithTag() error = %v, want nil", err)
	}
	if len(products) != 2 {
		t.Fatalf("len = %v, want 2", len(products))
	}
}

func TestTrendingProducts_Thresholds(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "p1", Rating: f64Ptr(4.8), ReviewCount: intPtr(120), InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", Rating: f64Ptr(4.5), ReviewCount: intPtr(50), InStock: true})
	insertProduct(t, s, types.Product{ID: "p3", Rating: f64Ptr(4.4), ReviewCount: intPtr(500), InStock: true}) // rating below
	insertProduct(t, s, types.Product{ID: "p4", Rating: f64Ptr(4.9), ReviewCount: intPtr(10), InStock: true})  // reviews below
	insertProduct(t, s, types.Product{ID: "p5", InStock: true})                                                // unrated

	products, err := s.TrendingProducts(context.Background(), 10)
	if err != nil {
		t.Fatalf("TrendingProducts() error = %v, want nil", err)
	}

	want := []types.ProductID{"p1", "p2"}
	if len(products) != len(want) {
		t.Fatalf("len = %v, want %v", len(products), len(want))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Errorf("products[%d].ID = %v, want %v", i, products[i].ID, id)
		}
	}
}

func TestBestsellerProducts_UnscoredSortLast(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "p1", BestsellerScore: f64Ptr(10), InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", InStock: true})
	insertProduct(t, s, types.Product{ID: "p3", BestsellerScore: f64Ptr(90), InStock: true})

	products, err := s.BestsellerProducts(context.Background(), 10)
	if err != nil {
		t.Fatalf("BestsellerProducts() error = %v, want nil", err)
	}

	want := []types.ProductID{"p3", "p1", "p2"}
	if len(products) != len(want) {
		t.Fatalf("len = %v, want %v", len(products), len(want))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Errorf("products[%d].ID = %v, want %v", i, products[i].ID, id)
		}
	}
}

func TestProductsByVendor_ExcludesSourceAndOutOfStock(t *testing.T) {
	s := newTestStore(t)
	insertProduct(t, s, types.Product{ID: "src", Vendor: strPtr("Acme"), InStock: true})
	insertProduct(t, s, types.Product{ID: "p1", Vendor: strPtr("Acme"), InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", Vendor: strPtr("Acme"), InStock: false})
	insertProduct(t, s, types.Product{ID: "p3", Vendor: strPtr("Globex"), InStock: true})

	products, err := s.ProductsByVendor(context.Background(), "Acme", "src", 10)
	if err != nil {
		t.Fatalf("ProductsByVendor() error = %v, want nil", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Errorf("ProductsByVendor() = %v, want [p1]", products)
	}
}

func TestProductsInSharedCollections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertProduct(t, s, types.Product{ID: "src", InStock: true})
	insertProduct(t, s, types.Product{ID: "p1", InStock: true})
	insertProduct(t, s, types.Product{ID: "p2", InStock: true})
	insertProduct(t, s, types.Product{ID: "p3", InStock: true})
	insertCollection(t, s, types.Collection{ID: "c1"})
	insertCollection(t, s, types.Collection{ID: "c2"})

	// src shares c1 with p1 and c2 with p2; p3 is elsewhere
	if err := s.ReplaceCollectionMembership(ctx, "c1", []types.ProductID{"src", "p1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceCollectionMembership(ctx, "c2", []types.ProductID{"src", "p2"}); err != nil {
		t.Fatal(err)
	}

	products, err := s.ProductsInSharedCollections(ctx, "src", 10)
	if err != nil {
		t.Fatalf("ProductsInSharedCollections() error = %v, want nil", err)
	}

	want := []types.ProductID{"p1", "p2"}
	if len(products) != len(want) {
		t.Fatalf("len = %v, want %v", len(products), len(want))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Errorf("products[%d].ID = %v, want %v", i, products[i].ID, id)
		}
	}
}

func TestListSmartCollections(t *testing.T) {
	s := newTestStore(t)
	rule := `{"type":"all"}`
	insertCollection(t, s, types.Collection{ID: "c1", IsSmart: true, Rule: &rule})
	insertCollection(t, s, types.Collection{ID: "c2", IsSmart: false})

	collections, err := s.ListSmartCollections(context.Background())
	if err != nil {
		t.Fatalf("ListSmartCollections() error = %v, want nil", err)
	}
	if len(collections) != 1 || collections[0].ID != "c1" {
		t.Errorf("ListSmartCollections() = %v, want [c1]", collections)
	}
}
