package benchmark

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"github.com/arkilian/syncbench/internal/gateway"
)

// openBenchGateway returns a gateway for the store selected by
// SYNCBENCH_BENCH_DRIVER and SYNCBENCH_BENCH_DSN (from .env or environment).
// Without them it opens a SQLite file in a temp dir.
func openBenchGateway(b *testing.B, driver string) *gateway.SQLGateway {
	b.Helper()
	_ = godotenv.Load("../../.env")

	dsn := ""
	if v := os.Getenv("SYNCBENCH_BENCH_DRIVER"); v != "" {
		if v != driver {
			b.Skipf("SYNCBENCH_BENCH_DRIVER=%s, skipping %s", v, driver)
		}
		dsn = os.Getenv("SYNCBENCH_BENCH_DSN")
	}
	if dsn == "" {
		if driver == gateway.DriverPostgres {
			b.Skip("SYNCBENCH_BENCH_DSN is required for pgx benchmarks")
		}
		dsn = filepath.Join(b.TempDir(), "users.db")
	}

	gw, err := gateway.Open(context.Background(), gateway.Options{Driver: driver, DSN: dsn})
	if err != nil {
		b.Fatalf("failed to open %s gateway: %v", driver, err)
	}
	b.Cleanup(func() { gw.Close() })

	b.Logf("Running benchmark against %s", driver)
	return gw
}
