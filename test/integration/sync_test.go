// Package integration runs the whole harness end to end against real stores.
package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arkilian/syncbench/internal/bench"
	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/internal/generator"
	"github.com/arkilian/syncbench/internal/report"
	"github.com/arkilian/syncbench/internal/storage"
	dsync "github.com/arkilian/syncbench/internal/sync"
	"github.com/arkilian/syncbench/pkg/types"
)

// TestEndToEnd_SmallCase runs all strategies for (2,3) on each SQLite driver
// and checks the final table and the report.
func TestEndToEnd_SmallCase(t *testing.T) {
	for _, driver := range []string{gateway.DriverSQLite3, gateway.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			tempDir := t.TempDir()

			gw, err := gateway.Open(ctx, gateway.Options{Driver: driver, DSN: filepath.Join(tempDir, "users.db")})
			if err != nil {
				t.Fatalf("failed to open gateway: %v", err)
			}
			defer gw.Close()

			var out bytes.Buffer
			d, err := bench.New(gw, bench.Options{Out: &out, FailFast: true, Stats: gw.Stats(), DriverName: driver})
			if err != nil {
				t.Fatalf("failed to create driver: %v", err)
			}

			c := types.Case{BatchSize: 2, RepeatCount: 3}
			rep, err := d.Run(ctx, []types.Case{c})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			rows, err := gw.List(ctx, 100)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(rows) != 9 {
				t.Fatalf("expected 9 rows, got %d", len(rows))
			}
			suffixed := 0
			for _, r := range rows {
				if strings.HasSuffix(r.Name, generator.SyncSuffix) {
					suffixed++
				}
			}
			if suffixed != 6 {
				t.Errorf("expected 6 rows carrying the sync suffix, got %d", suffixed)
			}

			if bad := rep.Inconsistent(); len(bad) != 0 {
				t.Errorf("unexpected inconsistent results %+v", bad)
			}
			if got := strings.Count(out.String(), " cost time: "); got != 5 {
				t.Errorf("expected 5 cost lines, got %d:\n%s", got, out.String())
			}

			// saved and published through the local object store
			paths, err := report.Save(rep, filepath.Join(tempDir, "reports"), report.Formats(), true)
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			sink, err := storage.NewLocalStorage(filepath.Join(tempDir, "published"))
			if err != nil {
				t.Fatalf("failed to create storage: %v", err)
			}
			if _, err := report.Publish(ctx, sink, rep, paths); err != nil {
				t.Fatalf("Publish failed: %v", err)
			}
			objects, err := sink.ListObjects(ctx, "reports")
			if err != nil {
				t.Fatalf("ListObjects failed: %v", err)
			}
			if len(objects) != len(report.Formats()) {
				t.Errorf("expected %d published objects, got %v", len(report.Formats()), objects)
			}
		})
	}
}

// TestSynchronize_ExistingSubset covers the 3..8 over 1..5 scenario.
func TestSynchronize_ExistingSubset(t *testing.T) {
	ctx := context.Background()
	gw, err := gateway.Open(ctx, gateway.Options{Driver: gateway.DriverSQLite3, DSN: filepath.Join(t.TempDir(), "users.db")})
	if err != nil {
		t.Fatalf("failed to open gateway: %v", err)
	}
	defer gw.Close()

	base, _ := generator.Generate(1, 5, "")
	if err := gw.ResetAll(ctx, base); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}

	desired, _ := generator.Generate(3, 6, generator.UpdateSuffix)
	res, err := dsync.New(gw).Synchronize(ctx, desired)
	if err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
	if res.Inserted != 3 || res.Updated != 3 || res.Unsynced != 0 {
		t.Errorf("unexpected result %+v", res)
	}

	n, err := gw.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 8 {
		t.Errorf("expected 8 rows, got %d", n)
	}
	if gw.Stats().Calls(gateway.OpFindExisting) != 1 || gw.Stats().Calls(gateway.OpInsert) != 1 {
		t.Errorf("expected one lookup and one insert, got %+v", gw.Stats().Snapshot())
	}
}
