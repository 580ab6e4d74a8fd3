// Package gateway is the persistence façade every benchmark strategy writes
// through. It owns the users table and all durable state.
package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/internal/observability"
	"github.com/arkilian/syncbench/pkg/types"
)

// Operation names used for op stats.
const (
	OpDeleteAll    = "delete_all"
	OpBulkReplace  = "bulk_replace"
	OpUpdate       = "conditional_update"
	OpInsert       = "batch_insert"
	OpFindExisting = "find_existing"
	OpTransaction  = "transaction"
)

// Writer is the write subset shared by the gateway and an open transaction.
type Writer interface {
	// BulkReplace inserts each record, fully overwriting any row with the same id.
	BulkReplace(ctx context.Context, records types.Batch) error

	// ConditionalUpdate overwrites name and email of the row with id; no-op if absent.
	ConditionalUpdate(ctx context.Context, id int64, record types.Record) error

	// BatchInsert inserts all records and fails if any id already exists.
	BatchInsert(ctx context.Context, records types.Batch) error
}

// Operation is one step of a transactional sequence.
type Operation func(ctx context.Context, w Writer) error

// UpdateOp returns an Operation that conditionally updates rec by its id.
func UpdateOp(rec types.Record) Operation {
	return func(ctx context.Context, w Writer) error {
		return w.ConditionalUpdate(ctx, rec.ID, rec)
	}
}

// Store is the full gateway contract used by strategies and the synchronizer.
type Store interface {
	Writer

	// ResetAll deletes every row and loads baseline.
	ResetAll(ctx context.Context, baseline types.Batch) error

	// FindExisting returns the subset of ids that have a row.
	FindExisting(ctx context.Context, ids []int64) (types.ExistenceSet, error)

	// RunInTransaction applies ops atomically.
	RunInTransaction(ctx context.Context, ops []Operation) error
}

// Options configures Open.
type Options struct {
	// Driver is one of sqlite3, sqlite, pgx
	Driver string

	// DSN is a file path for SQLite or a connection URL for Postgres
	DSN string

	// JournalMode is the SQLite journal mode (default WAL)
	JournalMode string

	// BusyTimeout is the SQLite busy timeout (default 5s)
	BusyTimeout time.Duration
}

// SQLGateway implements Store on database/sql.
type SQLGateway struct {
	db      *sql.DB
	dialect *Dialect
	stats   *observability.OpStats

	// Prepared per-row update, reused inside transactions via tx.StmtContext
	updateStmt *sql.Stmt
}

// Open connects to the store and creates the users table if absent.
// Any failure is a fatal connection error.
func Open(ctx context.Context, opts Options) (*SQLGateway, error) {
	dialect, err := LookupDialect(opts.Driver)
	if err != nil {
		return nil, apperrors.NewConnectionError(apperrors.CodeOpenFailed, "unsupported driver", err)
	}
	if opts.DSN == "" {
		return nil, apperrors.NewConnectionError(apperrors.CodeOpenFailed, "store location is required", nil)
	}
	if opts.JournalMode == "" {
		opts.JournalMode = "WAL"
	}
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	dsn := dialect.dataSourceName(opts.DSN, opts.JournalMode, int(opts.BusyTimeout.Milliseconds()))
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, apperrors.NewConnectionError(apperrors.CodeOpenFailed,
			fmt.Sprintf("failed to open %s store", dialect.Driver), err)
	}
	if dialect.SingleWriter {
		db.SetMaxOpenConns(1) // Single writer
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewConnectionError(apperrors.CodeOpenFailed,
			fmt.Sprintf("failed to connect to %s store", dialect.Driver), err)
	}

	g, err := newGateway(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return g, nil
}

// NewWithDB wraps an already opened database. The caller keeps ownership of
// the dialect choice; Close still closes db.
func NewWithDB(ctx context.Context, db *sql.DB, driver string) (*SQLGateway, error) {
	dialect, err := LookupDialect(driver)
	if err != nil {
		return nil, apperrors.NewConnectionError(apperrors.CodeOpenFailed, "unsupported driver", err)
	}
	return newGateway(ctx, db, dialect)
}

func newGateway(ctx context.Context, db *sql.DB, dialect *Dialect) (*SQLGateway, error) {
	if _, err := db.ExecContext(ctx, dialect.createTable); err != nil {
		return nil, apperrors.NewConnectionError(apperrors.CodeSchemaFailed, "failed to create users table", err)
	}

	updateStmt, err := db.PrepareContext(ctx, dialect.updateSQL())
	if err != nil {
		return nil, apperrors.NewConnectionError(apperrors.CodeSchemaFailed, "failed to prepare update statement", err)
	}

	return &SQLGateway{
		db:         db,
		dialect:    dialect,
		stats:      observability.NewOpStats(),
		updateStmt: updateStmt,
	}, nil
}

// Dialect returns the active dialect.
func (g *SQLGateway) Dialect() *Dialect {
	return g.dialect
}

// Stats returns the gateway's op counters.
func (g *SQLGateway) Stats() *observability.OpStats {
	return g.stats
}

// DB exposes the underlying handle for diagnostics and tests.
func (g *SQLGateway) DB() *sql.DB {
	return g.db
}

// Close releases the prepared statement and the connection pool.
func (g *SQLGateway) Close() error {
	if g.updateStmt != nil {
		g.updateStmt.Close()
	}
	return g.db.Close()
}

// ResetAll deletes every row, then bulk-replaces baseline.
// Both failures are counted in the op stats and returned.
func (g *SQLGateway) ResetAll(ctx context.Context, baseline types.Batch) error {
	start := time.Now()
	res, err := g.db.ExecContext(ctx, "DELETE FROM "+TableName)
	var deleted int64
	if err == nil {
		deleted, _ = res.RowsAffected()
	}
	g.stats.Record(OpDeleteAll, int(deleted), time.Since(start), err)
	if err != nil {
		return apperrors.NewWriteError(apperrors.CodeDeleteFailed, "failed to delete users", err)
	}

	return g.BulkReplace(ctx, baseline)
}

// BulkReplace upserts records in one call. Batches larger than one statement
// are split into chunks that share a single transaction.
func (g *SQLGateway) BulkReplace(ctx context.Context, records types.Batch) error {
	if len(records) <= g.dialect.rowsPerStatement() {
		return g.writer(g.db).BulkReplace(ctx, records)
	}
	err := g.withTx(ctx, func(w *sqlWriter) error {
		return w.BulkReplace(ctx, records)
	})
	return asWriteError(apperrors.CodeReplaceFailed, "bulk replace aborted", err)
}

// BatchInsert inserts records in one call with no partial effect on failure.
func (g *SQLGateway) BatchInsert(ctx context.Context, records types.Batch) error {
	if len(records) <= g.dialect.rowsPerStatement() {
		return g.writer(g.db).BatchInsert(ctx, records)
	}
	err := g.withTx(ctx, func(w *sqlWriter) error {
		return w.BatchInsert(ctx, records)
	})
	return asWriteError(apperrors.CodeInsertFailed, "batch insert aborted", err)
}

// ConditionalUpdate overwrites the row with id outside any transaction.
func (g *SQLGateway) ConditionalUpdate(ctx context.Context, id int64, record types.Record) error {
	return g.writer(g.db).ConditionalUpdate(ctx, id, record)
}

// RunInTransaction applies ops in one transaction. The first failing op
// rolls back every op before it; an empty sequence commits trivially.
func (g *SQLGateway) RunInTransaction(ctx context.Context, ops []Operation) error {
	start := time.Now()
	failedAt := -1

	err := g.withTx(ctx, func(w *sqlWriter) error {
		for i, op := range ops {
			if err := op(ctx, w); err != nil {
				failedAt = i
				return err
			}
		}
		return nil
	})
	g.stats.Record(OpTransaction, len(ops), time.Since(start), err)

	if err != nil {
		return apperrors.NewTransactionError(
			fmt.Sprintf("transaction of %d operations rolled back", len(ops)), err,
		).WithDetails(map[string]interface{}{
			"operations": len(ops),
			"failed_at":  failedAt,
		})
	}
	return nil
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (g *SQLGateway) withTx(ctx context.Context, fn func(w *sqlWriter) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("gateway: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	w := &sqlWriter{g: g, ex: tx, tx: tx}
	if err := fn(w); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("gateway: failed to commit transaction: %w", err)
	}
	return nil
}

func (g *SQLGateway) writer(ex execer) *sqlWriter {
	return &sqlWriter{g: g, ex: ex}
}
