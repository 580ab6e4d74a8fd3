package gateway

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/spaolacci/murmur3"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/pkg/types"
)

// FindExisting returns the subset of ids that currently have a row.
// Large id lists are queried in parameter-limit chunks.
func (g *SQLGateway) FindExisting(ctx context.Context, ids []int64) (types.ExistenceSet, error) {
	existing := make(types.ExistenceSet, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	start := time.Now()
	err := g.findExisting(ctx, ids, existing)
	g.stats.Record(OpFindExisting, len(ids), time.Since(start), err)
	if err != nil {
		return nil, apperrors.NewWriteError(apperrors.CodeQueryFailed,
			fmt.Sprintf("failed to query %d ids", len(ids)), err)
	}
	return existing, nil
}

func (g *SQLGateway) findExisting(ctx context.Context, ids []int64, into types.ExistenceSet) error {
	for _, chunk := range chunkRecords(ids, g.dialect.MaxParams) {
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := g.db.QueryContext(ctx, g.dialect.existsSQL(len(chunk)), args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			into[id] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

// Count returns the number of rows in the users table.
func (g *SQLGateway) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := g.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TableName).Scan(&count); err != nil {
		return 0, fmt.Errorf("gateway: failed to count users: %w", err)
	}
	return count, nil
}

// Get returns the row with id, reporting false when absent.
func (g *SQLGateway) Get(ctx context.Context, id int64) (types.Record, bool, error) {
	var r types.Record
	err := g.db.QueryRowContext(ctx, g.dialect.getSQL(), id).Scan(&r.ID, &r.Name, &r.Email)
	if err == sql.ErrNoRows {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, fmt.Errorf("gateway: failed to get user %d: %w", id, err)
	}
	return r, true, nil
}

// List returns up to limit rows ordered by id.
func (g *SQLGateway) List(ctx context.Context, limit int) (types.Batch, error) {
	rows, err := g.db.QueryContext(ctx, g.dialect.listSQL(), limit)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to list users: %w", err)
	}
	defer rows.Close()

	var out types.Batch
	for rows.Next() {
		var r types.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Email); err != nil {
			return nil, fmt.Errorf("gateway: failed to scan user: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gateway: error iterating users: %w", err)
	}
	return out, nil
}

// Fingerprint digests every row in id order with murmur3-128. Two stores with
// identical contents produce identical fingerprints.
func (g *SQLGateway) Fingerprint(ctx context.Context) (string, error) {
	rows, err := g.db.QueryContext(ctx, "SELECT id, name, email FROM "+TableName+" ORDER BY id")
	if err != nil {
		return "", fmt.Errorf("gateway: failed to read users for fingerprint: %w", err)
	}
	defer rows.Close()

	h := murmur3.New128()
	buf := make([]byte, 0, 64)
	for rows.Next() {
		var r types.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Email); err != nil {
			return "", fmt.Errorf("gateway: failed to scan user: %w", err)
		}
		buf = buf[:0]
		buf = strconv.AppendInt(buf, r.ID, 10)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Name...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Email...)
		buf = append(buf, 0x1e)
		h.Write(buf)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("gateway: error iterating users: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
