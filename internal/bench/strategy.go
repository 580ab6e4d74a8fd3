// Package bench runs the synchronization strategies over a matrix of batch
// configurations and measures each one.
package bench

import (
	"context"
	"fmt"

	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/internal/generator"
	dsync "github.com/arkilian/syncbench/internal/sync"
	"github.com/arkilian/syncbench/pkg/types"
)

// Strategy names, used for selection and in reports.
const (
	StrategyReplaceInto         = "replace_into"
	StrategyUpdate              = "update"
	StrategyUpdateTransactional = "update_transactional"
	StrategyReplaceIntoSplit    = "replace_into_split"
	StrategyDiffThenApply       = "diff_then_apply"
)

// Outcome counts what one Apply call wrote.
type Outcome struct {
	// Written counts rows sent through an upsert, where insert and update
	// are indistinguishable.
	Written  int
	Inserted int
	Updated  int
	Unsynced int
}

func (o *Outcome) add(other Outcome) {
	o.Written += other.Written
	o.Inserted += other.Inserted
	o.Updated += other.Updated
	o.Unsynced += other.Unsynced
}

// Strategy applies one desired batch to the store.
type Strategy interface {
	// Name is the selection key.
	Name() string

	// Label is the timing output label.
	Label() string

	// Split reports whether the strategy consumes overflow-split batches.
	Split() bool

	// Apply writes batch.
	Apply(ctx context.Context, store gateway.Store, batch types.Batch) (Outcome, error)
}

// Suffix returns the name suffix the strategy's batches are generated with.
func Suffix(s Strategy) string {
	if s.Split() {
		return generator.SyncSuffix
	}
	return generator.UpdateSuffix
}

// ReplaceInto upserts each batch in one statement.
type ReplaceInto struct{}

func (ReplaceInto) Name() string  { return StrategyReplaceInto }
func (ReplaceInto) Label() string { return "replace into" }
func (ReplaceInto) Split() bool   { return false }

func (ReplaceInto) Apply(ctx context.Context, store gateway.Store, batch types.Batch) (Outcome, error) {
	if err := store.BulkReplace(ctx, batch); err != nil {
		return Outcome{Unsynced: len(batch)}, err
	}
	return Outcome{Written: len(batch)}, nil
}

// Update issues one conditional update per record, outside any transaction.
// The first failure stops the batch; the remaining records are unsynced.
type Update struct{}

func (Update) Name() string  { return StrategyUpdate }
func (Update) Label() string { return "update" }
func (Update) Split() bool   { return false }

func (Update) Apply(ctx context.Context, store gateway.Store, batch types.Batch) (Outcome, error) {
	for i, r := range batch {
		if err := store.ConditionalUpdate(ctx, r.ID, r); err != nil {
			return Outcome{Updated: i, Unsynced: len(batch) - i}, err
		}
	}
	return Outcome{Updated: len(batch)}, nil
}

// UpdateTransactional issues the per-record updates of a batch inside one
// transaction.
type UpdateTransactional struct{}

func (UpdateTransactional) Name() string  { return StrategyUpdateTransactional }
func (UpdateTransactional) Label() string { return "update by transaction" }
func (UpdateTransactional) Split() bool   { return false }

func (UpdateTransactional) Apply(ctx context.Context, store gateway.Store, batch types.Batch) (Outcome, error) {
	ops := make([]gateway.Operation, len(batch))
	for i, r := range batch {
		ops[i] = gateway.UpdateOp(r)
	}
	if err := store.RunInTransaction(ctx, ops); err != nil {
		return Outcome{Unsynced: len(batch)}, err
	}
	return Outcome{Updated: len(batch)}, nil
}

// ReplaceIntoSplit upserts overflow-split batches. It writes the same end
// state as DiffThenApply and serves as its reference.
type ReplaceIntoSplit struct{}

func (ReplaceIntoSplit) Name() string  { return StrategyReplaceIntoSplit }
func (ReplaceIntoSplit) Label() string { return "replace into split" }
func (ReplaceIntoSplit) Split() bool   { return true }

func (ReplaceIntoSplit) Apply(ctx context.Context, store gateway.Store, batch types.Batch) (Outcome, error) {
	return ReplaceInto{}.Apply(ctx, store, batch)
}

// DiffThenApply queries existence, inserts the absent records and updates
// the present ones in a transaction.
type DiffThenApply struct{}

func (DiffThenApply) Name() string  { return StrategyDiffThenApply }
func (DiffThenApply) Label() string { return "select create update" }
func (DiffThenApply) Split() bool   { return true }

func (DiffThenApply) Apply(ctx context.Context, store gateway.Store, batch types.Batch) (Outcome, error) {
	res, err := dsync.New(store).Synchronize(ctx, batch)
	return Outcome{Inserted: res.Inserted, Updated: res.Updated, Unsynced: res.Unsynced}, err
}

// Strategies returns every strategy in run order.
func Strategies() []Strategy {
	return []Strategy{ReplaceInto{}, Update{}, UpdateTransactional{}, ReplaceIntoSplit{}, DiffThenApply{}}
}

// LookupStrategy finds a strategy by name.
func LookupStrategy(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("bench: unknown strategy %q", name)
}
