// Package catalog drives smart-collection membership sync: it compiles
// a collection's rule, evaluates it against the current catalog
// snapshot, and atomically replaces the stored membership.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shopkit-io/catalogd/internal/rules"
	"github.com/shopkit-io/catalogd/internal/store"
	"github.com/shopkit-io/catalogd/internal/types"
)

// Syncer recomputes smart-collection membership. Sync is the only
// mutating operation in the engine; everything else reads.
type Syncer struct {
	store *store.Store
	log   *zap.Logger

	mutexLock sync.Mutex
	syncLocks map[types.CollectionID]*sync.Mutex
}

// NewSyncer creates a syncer over the store.
func NewSyncer(st *store.Store, log *zap.Logger) *Syncer {
	return &Syncer{
		store:     st,
		log:       log,
		syncLocks: make(map[types.CollectionID]*sync.Mutex),
	}
}

// collectionLock returns the mutex for a collection, creating it if not
// present. Per-collection mutexes serialize concurrent syncs of the same
// collection while leaving different collections free to sync in
// parallel. The map grows by one entry per smart collection (acceptable
// footprint for catalog-scale collection counts).
func (s *Syncer) collectionLock(id types.CollectionID) *sync.Mutex {
	s.mutexLock.Lock()
	defer s.mutexLock.Unlock()

	if _, ok := s.syncLocks[id]; !ok {
		s.syncLocks[id] = &sync.Mutex{}
	}
	return s.syncLocks[id]
}

// SyncCollection recomputes one collection's membership and returns the
// number of members written.
//
// No-op paths (0, nil): collection is not smart, has no rule, or the
// rule fails to parse - a bad rule in one collection must not fail a
// catalog-wide sync. Store failures abort with the old membership
// intact; the caller may retry.
func (s *Syncer) SyncCollection(ctx context.Context, id types.CollectionID) (int, error) {
	lock := s.collectionLock(id)
	lock.Lock()
	defer lock.Unlock()

	collection, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return 0, err
	}

	if !collection.IsSmart || collection.Rule == nil {
		s.log.Debug("sync skipped: collection is not rule-driven",
			zap.String("collection_id", string(id)))
		return 0, nil
	}

	node, err := types.ParseRule(*collection.Rule)
	if err != nil {
		s.log.Warn("sync skipped: collection rule does not parse",
			zap.String("collection_id", string(id)))
		return 0, nil
	}

	compiled := rules.Compile(node)
	if compiled.Dropped > 0 {
		s.log.Warn("rule conditions dropped during compilation",
			zap.String("collection_id", string(id)),
			zap.Int("dropped", compiled.Dropped))
	}

	// Full-catalog scan through the compiled predicate; rows come back
	// in ID order, which becomes the membership position order.
	matched, err := s.store.QueryProducts(ctx, compiled)
	if err != nil {
		return 0, fmt.Errorf("sync %s: %w", id, err)
	}

	orderedIDs := make([]types.ProductID, len(matched))
	for i := range matched {
		orderedIDs[i] = matched[i].ID
	}

	if err := s.store.ReplaceCollectionMembership(ctx, id, orderedIDs); err != nil {
		return 0, fmt.Errorf("sync %s: %w", id, err)
	}

	s.log.Info("smart collection synced",
		zap.String("collection_id", string(id)),
		zap.Int("members", len(orderedIDs)))
	return len(orderedIDs), nil
}

// SyncAll syncs every smart collection and returns the total member
// count written. A failed collection does not stop the rest; failures
// are joined into the returned error.
func (s *Syncer) SyncAll(ctx context.Context) (int, error) {
	collections, err := s.store.ListSmartCollections(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	var errs []error
	for _, c := range collections {
		count, err := s.SyncCollection(ctx, c.ID)
		if err != nil {
			s.log.Error("smart collection sync failed",
				zap.String("collection_id", string(c.ID)),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		total += count
	}

	return total, errors.Join(errs...)
}
