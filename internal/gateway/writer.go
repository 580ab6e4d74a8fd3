package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/pkg/types"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqlWriter implements Writer either directly on the pool or inside a
// transaction (tx != nil).
type sqlWriter struct {
	g  *SQLGateway
	ex execer
	tx *sql.Tx

	// Transaction-bound copy of the prepared update, created on first use
	txUpdate *sql.Stmt
}

// BulkReplace upserts records, one statement per parameter-limit chunk.
func (w *sqlWriter) BulkReplace(ctx context.Context, records types.Batch) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	err := w.execChunks(ctx, records, w.g.dialect.upsertSQL)
	w.g.stats.Record(OpBulkReplace, len(records), time.Since(start), err)
	if err != nil {
		return apperrors.NewWriteError(apperrors.CodeReplaceFailed,
			fmt.Sprintf("failed to replace %d records", len(records)), err)
	}
	return nil
}

// BatchInsert inserts records, one statement per parameter-limit chunk.
func (w *sqlWriter) BatchInsert(ctx context.Context, records types.Batch) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	err := w.execChunks(ctx, records, w.g.dialect.insertSQL)
	w.g.stats.Record(OpInsert, len(records), time.Since(start), err)
	if err != nil {
		return apperrors.NewWriteError(apperrors.CodeInsertFailed,
			fmt.Sprintf("failed to insert %d records", len(records)), err)
	}
	return nil
}

// ConditionalUpdate overwrites name and email of the row with id.
func (w *sqlWriter) ConditionalUpdate(ctx context.Context, id int64, record types.Record) error {
	start := time.Now()
	_, err := w.updateStmt(ctx).ExecContext(ctx, record.Name, record.Email, id)
	w.g.stats.Record(OpUpdate, 1, time.Since(start), err)
	if err != nil {
		return apperrors.NewWriteError(apperrors.CodeUpdateFailed,
			fmt.Sprintf("failed to update user %d", id), err)
	}
	return nil
}

func (w *sqlWriter) updateStmt(ctx context.Context) *sql.Stmt {
	if w.tx == nil {
		return w.g.updateStmt
	}
	if w.txUpdate == nil {
		w.txUpdate = w.tx.StmtContext(ctx, w.g.updateStmt)
	}
	return w.txUpdate
}

func (w *sqlWriter) execChunks(ctx context.Context, records types.Batch, build func(rows int) string) error {
	for _, chunk := range chunkRecords(records, w.g.dialect.rowsPerStatement()) {
		if _, err := w.ex.ExecContext(ctx, build(len(chunk)), recordArgs(chunk)...); err != nil {
			return err
		}
	}
	return nil
}

func recordArgs(records []types.Record) []any {
	args := make([]any, 0, len(records)*3)
	for _, r := range records {
		args = append(args, r.ID, r.Name, r.Email)
	}
	return args
}

// asWriteError keeps classified errors and classifies the rest as write failures.
func asWriteError(code, message string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.GetCategory(err) != "" {
		return err
	}
	return apperrors.NewWriteError(code, message, err)
}
