// Package sync implements diff-then-apply: look up which desired records
// already exist, batch-insert the absent ones, then update the present ones
// in a single transaction.
//
// The insert and the update transaction are two separate steps. If the
// update transaction fails after the insert committed, the inserted rows
// stay; Result reports how many records were left unsynced.
package sync

import (
	"context"

	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/pkg/types"
)

// Store is the subset of the gateway the synchronizer needs.
type Store interface {
	FindExisting(ctx context.Context, ids []int64) (types.ExistenceSet, error)
	BatchInsert(ctx context.Context, records types.Batch) error
	RunInTransaction(ctx context.Context, ops []gateway.Operation) error
}

// Result counts what one Synchronize call applied.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Unsynced int `json:"unsynced"`
}

// Synchronizer applies desired batches through a Store.
type Synchronizer struct {
	store Store
}

// New creates a synchronizer over store.
func New(store Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// Partition splits batch into records absent from and present in existing.
// Relative order is preserved in both outputs.
func Partition(batch types.Batch, existing types.ExistenceSet) (toInsert, toUpdate types.Batch) {
	for _, r := range batch {
		if existing.Has(r.ID) {
			toUpdate = append(toUpdate, r)
		} else {
			toInsert = append(toInsert, r)
		}
	}
	return toInsert, toUpdate
}

// Synchronize makes every record of batch present in the store with exactly
// its name and email. An empty batch touches nothing.
//
// Failures are returned unchanged from the store. A failed existence query
// or insert leaves the whole batch unsynced and skips the update phase; a
// failed update transaction keeps the inserts and leaves the updates
// unsynced.
func (s *Synchronizer) Synchronize(ctx context.Context, batch types.Batch) (Result, error) {
	if len(batch) == 0 {
		return Result{}, nil
	}

	existing, err := s.store.FindExisting(ctx, batch.IDs())
	if err != nil {
		return Result{Unsynced: len(batch)}, err
	}

	toInsert, toUpdate := Partition(batch, existing)

	if err := s.store.BatchInsert(ctx, toInsert); err != nil {
		return Result{Unsynced: len(batch)}, err
	}

	ops := make([]gateway.Operation, 0, len(toUpdate))
	for _, r := range toUpdate {
		ops = append(ops, gateway.UpdateOp(r))
	}
	if err := s.store.RunInTransaction(ctx, ops); err != nil {
		return Result{Inserted: len(toInsert), Unsynced: len(toUpdate)}, err
	}

	return Result{Inserted: len(toInsert), Updated: len(toUpdate)}, nil
}
