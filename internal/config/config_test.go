package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/pkg/types"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Store.Driver != gateway.DriverSQLite3 || !cfg.Bench.FailFast {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if FormatMatrix(cfg.Bench.Matrix) != "1x1000,2x1000,10x1000,100x100" {
		t.Errorf("unexpected default matrix %s", FormatMatrix(cfg.Bench.Matrix))
	}

	opts := cfg.GatewayOptions()
	if opts.BusyTimeout != 5*time.Second || opts.JournalMode != "WAL" || opts.DSN == "" {
		t.Errorf("unexpected gateway options %+v", opts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		code   string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "oracle" }, apperrors.CodeInvalidConfig},
		{"missing dsn", func(c *Config) { c.Store.DSN = "" }, apperrors.CodeInvalidConfig},
		{"empty matrix", func(c *Config) { c.Bench.Matrix = nil }, apperrors.CodeInvalidConfig},
		{"zero batch", func(c *Config) { c.Bench.Matrix = []types.Case{{BatchSize: 0, RepeatCount: 1}} }, apperrors.CodeInvalidCase},
		{"bad format", func(c *Config) { c.Report.Formats = []string{"pdf"} }, apperrors.CodeInvalidConfig},
		{"bad publish", func(c *Config) { c.Report.Publish = "ftp" }, apperrors.CodeInvalidConfig},
		{"s3 without bucket", func(c *Config) { c.Report.Publish = PublishS3 }, apperrors.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Store.DSN = "bench.db"
			tt.mutate(cfg)
			err := cfg.Validate()
			if apperrors.GetCode(err) != tt.code {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
			if apperrors.GetCategory(err) != apperrors.ErrCategoryValidation {
				t.Errorf("expected validation category, got %v", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Report.Publish = PublishLocal
	cfg.Resolve()

	if cfg.Report.Dir == "" || cfg.Report.LocalPath != filepath.Join(cfg.Report.Dir, "published") {
		t.Errorf("publish paths not resolved: %+v", cfg.Report)
	}

	pg := DefaultConfig()
	pg.Store.Driver = gateway.DriverPostgres
	pg.Resolve()
	if pg.Store.DSN != "" {
		t.Errorf("postgres must not get a file DSN, got %q", pg.Store.DSN)
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeConfig(t, "bench.yaml", `
store:
  driver: sqlite
  dsn: /tmp/bench.db
bench:
  matrix:
    - batch_size: 10
      repeat_count: 50
  strategies: [replace_into, diff_then_apply]
  fail_fast: false
report:
  formats: [json, csv]
  compress: true
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Store.Driver != gateway.DriverSQLite || cfg.Store.DSN != "/tmp/bench.db" {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	if cfg.Store.BusyTimeoutMS != 5000 {
		t.Errorf("expected default busy timeout kept, got %d", cfg.Store.BusyTimeoutMS)
	}
	if len(cfg.Bench.Matrix) != 1 || cfg.Bench.Matrix[0] != (types.Case{BatchSize: 10, RepeatCount: 50}) {
		t.Errorf("unexpected matrix %v", cfg.Bench.Matrix)
	}
	if cfg.Bench.FailFast || len(cfg.Bench.Strategies) != 2 || !cfg.Report.Compress {
		t.Errorf("unexpected bench/report %+v %+v", cfg.Bench, cfg.Report)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeConfig(t, "bench.json", `{"store":{"driver":"pgx","dsn":"postgres://u:p@localhost/db"},"bench":{"matrix":[{"batch_size":2,"repeat_count":3}]}}`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Store.Driver != gateway.DriverPostgres || FormatMatrix(cfg.Bench.Matrix) != "2x3" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.Bench.FailFast {
		t.Error("expected default fail_fast kept")
	}
}

func TestLoadFromFile_HCL(t *testing.T) {
	path := writeConfig(t, "bench.hcl", `
driver = "sqlite"
dsn    = "bench.db"

case {
  batch_size   = 1
  repeat_count = 10
}
case {
  batch_size   = 5
  repeat_count = 2
}

strategies     = ["update"]
report_formats = ["txt", "xlsx"]
publish        = "s3"
s3_bucket      = "bench-reports"
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Store.Driver != gateway.DriverSQLite || cfg.Store.JournalMode != "WAL" {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	if FormatMatrix(cfg.Bench.Matrix) != "1x10,5x2" {
		t.Errorf("unexpected matrix %s", FormatMatrix(cfg.Bench.Matrix))
	}
	if !cfg.Bench.FailFast || cfg.Bench.InspectLimit != 5 {
		t.Errorf("expected defaults kept, got %+v", cfg.Bench)
	}
	if cfg.Report.Publish != PublishS3 || cfg.Report.S3.Bucket != "bench-reports" {
		t.Errorf("unexpected report %+v", cfg.Report)
	}
}

func TestLoadFromFile_HCLWithoutCasesKeepsMatrix(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "bench.hcl", `dsn = "x.db"`))
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if len(cfg.Bench.Matrix) != 4 {
		t.Errorf("expected default matrix, got %v", cfg.Bench.Matrix)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFromFile(writeConfig(t, "bench.toml", "")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadFromFile(writeConfig(t, "bench.hcl", "driver = ")); err == nil {
		t.Error("expected error for malformed HCL")
	}
}

func TestExport_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.DSN = "bench.db"
	cfg.Bench.Matrix = []types.Case{{BatchSize: 3, RepeatCount: 7}}
	cfg.Bench.Strategies = []string{"update", "diff_then_apply"}
	cfg.Bench.FailFast = false
	cfg.Report.Formats = []string{"json"}
	cfg.Report.Publish = PublishS3
	cfg.Report.S3.Bucket = "b"

	path := filepath.Join(t.TempDir(), "exported.hcl")
	if err := Export(path, cfg); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "case {") {
		t.Errorf("expected case blocks in export:\n%s", data)
	}

	back, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("failed to load exported config: %v", err)
	}
	if FormatMatrix(back.Bench.Matrix) != "3x7" || back.Bench.FailFast ||
		len(back.Bench.Strategies) != 2 || back.Report.S3.Bucket != "b" {
		t.Errorf("export did not round trip: %+v", back)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SYNCBENCH_DRIVER", "sqlite")
	t.Setenv("SYNCBENCH_MATRIX", "2x10, 4x5")
	t.Setenv("SYNCBENCH_FAIL_FAST", "false")
	t.Setenv("SYNCBENCH_BUSY_TIMEOUT_MS", "250")
	t.Setenv("SYNCBENCH_REPORT_FORMATS", "json,csv")

	cfg := DefaultConfig()
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Store.Driver != gateway.DriverSQLite || cfg.Store.BusyTimeoutMS != 250 {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	if FormatMatrix(cfg.Bench.Matrix) != "2x10,4x5" || cfg.Bench.FailFast {
		t.Errorf("unexpected bench %+v", cfg.Bench)
	}
	if len(cfg.Report.Formats) != 2 {
		t.Errorf("unexpected formats %v", cfg.Report.Formats)
	}
}

func TestLoadFromEnv_Malformed(t *testing.T) {
	for name, value := range map[string]string{
		"SYNCBENCH_BUSY_TIMEOUT_MS": "soon",
		"SYNCBENCH_FAIL_FAST":       "maybe",
		"SYNCBENCH_MATRIX":          "10by5",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			if err := LoadFromEnv(DefaultConfig()); err == nil || !strings.Contains(err.Error(), name) {
				t.Errorf("expected error naming %s, got %v", name, err)
			}
		})
	}
}

func TestLoadFromFileThenEnv_Precedence(t *testing.T) {
	path := writeConfig(t, "bench.yaml", "store:\n  driver: sqlite\n  dsn: file.db\n")
	t.Setenv("SYNCBENCH_DSN", "env.db")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Store.Driver != gateway.DriverSQLite || cfg.Store.DSN != "env.db" {
		t.Errorf("expected file driver and env dsn, got %+v", cfg.Store)
	}
}

func TestParseMatrix(t *testing.T) {
	m, err := ParseMatrix("1x1000,2X1000, 100x100")
	if err != nil {
		t.Fatalf("ParseMatrix failed: %v", err)
	}
	if FormatMatrix(m) != "1x1000,2x1000,100x100" {
		t.Errorf("unexpected matrix %s", FormatMatrix(m))
	}

	for _, bad := range []string{"", "10", "0x5", "5x-1", "ax2"} {
		if _, err := ParseMatrix(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.Store.DSN = filepath.Join(base, "db", "users.db")
	cfg.Report.Dir = filepath.Join(base, "reports")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "db"), cfg.Report.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
}
