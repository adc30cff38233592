// Package memory provides an in-process UnitOfWork over copy-on-read
// snapshots. Transactions are serialised by a store-wide semaphore, writes
// are staged until Commit, and updates are version-checked like the
// Postgres adapter, so workflow tests exercise the same conflict paths.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback without Begin.
var ErrNoTransaction = errors.New("no active transaction")

// Store holds committed state and doubles as the UnitOfWorkFactory.
type Store struct {
	sem chan struct{}

	loads       map[kernel.UUID]load.Snapshot
	assignments map[kernel.UUID]assignment.Snapshot
	resources   map[kernel.UUID]resource.Snapshot
	mirrors     map[notification.Key]notification.MirrorSnapshot
}

var _ ports.UnitOfWorkFactory = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		sem:         make(chan struct{}, 1),
		loads:       make(map[kernel.UUID]load.Snapshot),
		assignments: make(map[kernel.UUID]assignment.Snapshot),
		resources:   make(map[kernel.UUID]resource.Snapshot),
		mirrors:     make(map[notification.Key]notification.MirrorSnapshot),
	}
}

func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

// view is a transaction's picture of the store: staged writes over the
// committed maps.
type view struct {
	store       *Store
	loads       map[kernel.UUID]load.Snapshot
	assignments map[kernel.UUID]assignment.Snapshot
	resources   map[kernel.UUID]resource.Snapshot
	mirrors     map[notification.Key]notification.MirrorSnapshot
}

func newView(s *Store) *view {
	return &view{
		store:       s,
		loads:       make(map[kernel.UUID]load.Snapshot),
		assignments: make(map[kernel.UUID]assignment.Snapshot),
		resources:   make(map[kernel.UUID]resource.Snapshot),
		mirrors:     make(map[notification.Key]notification.MirrorSnapshot),
	}
}

func (v *view) apply() {
	maps.Copy(v.store.loads, v.loads)
	maps.Copy(v.store.assignments, v.assignments)
	maps.Copy(v.store.resources, v.resources)
	maps.Copy(v.store.mirrors, v.mirrors)
}

func lookup[K comparable, V any](staged, committed map[K]V, key K) (V, bool) {
	if v, ok := staged[key]; ok {
		return v, true
	}
	v, ok := committed[key]
	return v, ok
}

// all returns staged values merged over committed ones.
func all[K comparable, V any](staged, committed map[K]V) []V {
	merged := maps.Clone(committed)
	maps.Copy(merged, staged)
	return slices.Collect(maps.Values(merged))
}

func (v *view) load(id kernel.UUID) (load.Snapshot, bool) {
	return lookup(v.loads, v.store.loads, id)
}

func (v *view) assignment(id kernel.UUID) (assignment.Snapshot, bool) {
	return lookup(v.assignments, v.store.assignments, id)
}

func (v *view) resource(id kernel.UUID) (resource.Snapshot, bool) {
	return lookup(v.resources, v.store.resources, id)
}

func (v *view) mirror(key notification.Key) (notification.MirrorSnapshot, bool) {
	return lookup(v.mirrors, v.store.mirrors, key)
}

func (v *view) allLoads() []load.Snapshot { return all(v.loads, v.store.loads) }

func (v *view) allAssignments() []assignment.Snapshot {
	return all(v.assignments, v.store.assignments)
}

func (v *view) allResources() []resource.Snapshot { return all(v.resources, v.store.resources) }

func sortByExpiry(items []assignment.Snapshot) {
	slices.SortFunc(items, func(a, b assignment.Snapshot) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
}

func isExpired(s assignment.Snapshot, now time.Time) bool {
	return s.State == assignment.Pending && !now.Before(s.ExpiresAt)
}
