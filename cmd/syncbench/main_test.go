package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arkilian/syncbench/internal/config"
)

func TestLoadConfig_FlagsOverrideEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	content := "store:\n  driver: sqlite\n  dsn: file.db\nbench:\n  matrix:\n    - batch_size: 3\n      repeat_count: 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SYNCBENCH_DSN", "env.db")
	t.Setenv("SYNCBENCH_MATRIX", "4x4")

	cfg, err := loadConfig(path, flagValues{matrix: "5x5", failFast: "false"}, true)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Store.Driver != "sqlite" {
		t.Errorf("expected driver from file, got %s", cfg.Store.Driver)
	}
	if cfg.Store.DSN != "env.db" {
		t.Errorf("expected dsn from env, got %s", cfg.Store.DSN)
	}
	if config.FormatMatrix(cfg.Bench.Matrix) != "5x5" {
		t.Errorf("expected matrix from flag, got %s", config.FormatMatrix(cfg.Bench.Matrix))
	}
	if cfg.Bench.FailFast || !cfg.Report.Compress {
		t.Errorf("expected flag overrides applied, got %+v %+v", cfg.Bench, cfg.Report)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := loadConfig("", flagValues{driver: "mysql"}, false); err == nil {
		t.Error("expected validation error for unknown driver")
	}
	if _, err := loadConfig("", flagValues{matrix: "0x1"}, false); err == nil {
		t.Error("expected error for invalid matrix")
	}
	if _, err := loadConfig("", flagValues{failFast: "sometimes"}, false); err == nil {
		t.Error("expected error for invalid fail-fast value")
	}
}
