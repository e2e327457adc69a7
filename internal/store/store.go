package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shopkit-io/catalogd/internal/types"
)

// Predicate is a compiled per-product membership test. Implemented by
// rules.CompiledRule; declared here so the store accepts any predicate
// without importing the compiler.
type Predicate interface {
	Match(*types.Product) bool
}

// Store issues attribute-filtered reads and transactional membership
// writes against the catalog database.
type Store struct {
	db *sqlx.DB
	q  *Queries
}

// New creates a Store over an open database handle.
func New(db *sqlx.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, q: q}, nil
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// GetProduct fetches one product by ID.
// Returns types.ErrProductNotFound when no row matches.
func (s *Store) GetProduct(ctx context.Context, id types.ProductID) (*types.Product, error) {
	var p types.Product
	if err := s.q.Get(ctx, "get-product", &p, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// QueryProducts returns the catalog filtered through the predicate, in
// ID-ascending order. A nil predicate returns the full catalog; reading
// the whole snapshot in one statement keeps rule evaluation
// deterministic for a fixed catalog state.
func (s *Store) QueryProducts(ctx context.Context, pred Predicate) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "list-products", &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if pred == nil {
		return products, nil
	}
	matched := products[:0]
	for i := range products {
		if pred.Match(&products[i]) {
			matched = append(matched, products[i])
		}
	}
	return matched, nil
}

// ProductsInSharedCollections returns in-stock products sharing at least
// one collection with the given product, excluding the product itself.
func (s *Store) ProductsInSharedCollections(ctx context.Context, id types.ProductID, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "shared-collection-products", &products, id, id, limit); err != nil {
		return nil, fmt.Errorf("shared collection products for %s: %w", id, err)
	}
	return products, nil
}

// ProductsByVendor returns in-stock products of the exact vendor,
// best-rated first.
func (s *Store) ProductsByVendor(ctx context.Context, vendor string, exclude types.ProductID, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "products-by-vendor", &products, vendor, exclude, limit); err != nil {
		return nil, fmt.Errorf("products by vendor %q: %w", vendor, err)
	}
	return products, nil
}

// ProductsByType returns in-stock products of the exact product type,
// best-rated first.
func (s *Store) ProductsByType(ctx context.Context, productType string, exclude types.ProductID, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "products-by-type", &products, productType, exclude, limit); err != nil {
		return nil, fmt.Errorf("products by type %q: %w", productType, err)
	}
	return products, nil
}

// ProductsInPriceBand returns in-stock products priced within
// [min, max], ordered by absolute distance to the reference price.
func (s *Store) ProductsInPriceBand(ctx context.Context, min, max, reference float64, exclude types.ProductID, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "products-in-price-band", &products, min, max, exclude, reference, limit); err != nil {
		return nil, fmt.Errorf("products in price band [%.2f, %.2f]: %w", min, max, err)
	}
	return products, nil
}

// ProductsWithTag returns in-stock products whose tag string contains
// the tag as a substring (LIKE '%tag%' semantics).
func (s *Store) ProductsWithTag(ctx context.Context, tag string, exclude types.ProductID, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "products-with-tag-like", &products, "%"+tag+"%", exclude, limit); err != nil {
		return nil, fmt.Errorf("products with tag %q: %w", tag, err)
	}
	return products, nil
}

// TrendingProducts returns in-stock products with rating >= 4.5 and at
// least 50 reviews.
func (s *Store) TrendingProducts(ctx context.Context, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "trending-products", &products, limit); err != nil {
		return nil, fmt.Errorf("trending products: %w", err)
	}
	return products, nil
}

// BestsellerProducts returns in-stock products by bestseller score
// descending; unscored products sort last.
func (s *Store) BestsellerProducts(ctx context.Context, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "bestseller-products", &products, limit); err != nil {
		return nil, fmt.Errorf("bestseller products: %w", err)
	}
	return products, nil
}

// TopRatedProducts returns in-stock products with rating >= 4.0 and at
// least 10 reviews.
func (s *Store) TopRatedProducts(ctx context.Context, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "top-rated-products", &products, limit); err != nil {
		return nil, fmt.Errorf("top rated products: %w", err)
	}
	return products, nil
}

// NewestProducts returns in-stock products by creation time descending.
func (s *Store) NewestProducts(ctx context.Context, limit int) ([]types.Product, error) {
	var products []types.Product
	if err := s.q.Select(ctx, "newest-products", &products, limit); err != nil {
		return nil, fmt.Errorf("newest products: %w", err)
	}
	return products, nil
}

// GetCollection fetches one collection by ID.
// Returns types.ErrCollectionNotFound when no row matches.
func (s *Store) GetCollection(ctx context.Context, id types.CollectionID) (*types.Collection, error) {
	var c types.Collection
	if err := s.q.Get(ctx, "get-collection", &c, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("get collection %s: %w", id, err)
	}
	return &c, nil
}

// ListSmartCollections returns every smart collection in ID order.
func (s *Store) ListSmartCollections(ctx context.Context) ([]types.Collection, error) {
	var collections []types.Collection
	if err := s.q.Select(ctx, "list-smart-collections", &collections); err != nil {
		return nil, fmt.Errorf("list smart collections: %w", err)
	}
	return collections, nil
}

// CollectionMembers returns membership rows ordered by position.
func (s *Store) CollectionMembers(ctx context.Context, id types.CollectionID) ([]types.Member, error) {
	var members []types.Member
	if err := s.q.Select(ctx, "collection-members", &members, id); err != nil {
		return nil, fmt.Errorf("collection members %s: %w", id, err)
	}
	return members, nil
}

// ReplaceCollectionMembership atomically swaps a collection's membership
// for the ordered ID list, assigning position = slice index. Delete and
// inserts run in one transaction: a concurrent reader observes either
// the full old set or the full new set, and any failure rolls the whole
// replacement back.
func (s *Store) ReplaceCollectionMembership(ctx context.Context, id types.CollectionID, orderedIDs []types.ProductID) error {
	deleteSQL, err := s.q.Raw("delete-collection-members")
	if err != nil {
		return err
	}
	insertSQL, err := s.q.Raw("insert-collection-member")
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin membership replace for %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(deleteSQL), id); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear membership for %s: %w", id, err)
	}

	for position, productID := range orderedIDs {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(insertSQL), id, productID, position); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert member %s at %d for %s: %w", productID, position, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership replace for %s: %w", id, err)
	}
	return nil
}
