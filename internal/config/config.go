// Package config provides configuration for the syncbench harness.
//
// Values are layered: DefaultConfig, then a YAML, JSON or HCL file, then
// SYNCBENCH_* environment variables, then command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/internal/report"
	"github.com/arkilian/syncbench/pkg/types"
)

// Publish targets for saved reports.
const (
	PublishNone  = ""
	PublishLocal = "local"
	PublishS3    = "s3"
)

// Config holds the full harness configuration.
type Config struct {
	// Store selects the database the strategies write to
	Store StoreConfig `json:"store" yaml:"store"`

	// Bench controls the matrix and the error policy
	Bench BenchConfig `json:"bench" yaml:"bench"`

	// Report controls report output and publishing
	Report ReportConfig `json:"report" yaml:"report"`
}

// StoreConfig holds database configuration.
type StoreConfig struct {
	// Driver is sqlite3, sqlite or pgx
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the SQLite file path or the Postgres connection URL
	DSN string `json:"dsn" yaml:"dsn"`

	// JournalMode is the SQLite journal mode
	JournalMode string `json:"journal_mode" yaml:"journal_mode"`

	// BusyTimeoutMS is the SQLite busy timeout in milliseconds
	BusyTimeoutMS int `json:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// BenchConfig holds benchmark configuration.
type BenchConfig struct {
	// Matrix is the ordered list of cases to run
	Matrix []types.Case `json:"matrix" yaml:"matrix"`

	// Strategies selects strategies by name; empty runs all
	Strategies []string `json:"strategies" yaml:"strategies"`

	// FailFast aborts the run on the first write failure
	FailFast bool `json:"fail_fast" yaml:"fail_fast"`

	// InspectLimit is how many rows -inspect prints
	InspectLimit int `json:"inspect_limit" yaml:"inspect_limit"`
}

// ReportConfig holds report configuration.
type ReportConfig struct {
	// Dir is where report files are written; empty disables saving
	Dir string `json:"dir" yaml:"dir"`

	// Formats is a list of txt, json, csv, xlsx
	Formats []string `json:"formats" yaml:"formats"`

	// Compress snappy-frames every report file
	Compress bool `json:"compress" yaml:"compress"`

	// Publish is "", local or s3
	Publish string `json:"publish" yaml:"publish"`

	// LocalPath is the object root for local publishing
	LocalPath string `json:"local_path" yaml:"local_path"`

	// S3 configuration (for s3 publishing)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 publishing configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Prefix is prepended to every object key
	Prefix string `json:"prefix" yaml:"prefix"`

	// UsePathStyle enables path-style addressing
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultConfig returns the configuration of the original benchmark run:
// a local SQLite file and the four-case matrix.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:        gateway.DriverSQLite3,
			DSN:           "",
			JournalMode:   "WAL",
			BusyTimeoutMS: 5000,
		},
		Bench: BenchConfig{
			Matrix:       types.DefaultMatrix(),
			FailFast:     true,
			InspectLimit: 5,
		},
		Report: ReportConfig{
			Formats: []string{string(report.FormatText)},
		},
	}
}

// Resolve fills derived defaults.
func (c *Config) Resolve() {
	if c.Store.DSN == "" && c.Store.Driver != gateway.DriverPostgres {
		c.Store.DSN = filepath.Join(".", "data", "syncbench", "users.db")
	}
	if c.Store.JournalMode == "" {
		c.Store.JournalMode = "WAL"
	}
	if c.Report.Publish != PublishNone && c.Report.Dir == "" {
		c.Report.Dir = filepath.Join(".", "data", "syncbench", "reports")
	}
	if c.Report.Publish == PublishLocal && c.Report.LocalPath == "" {
		c.Report.LocalPath = filepath.Join(c.Report.Dir, "published")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := gateway.LookupDialect(c.Store.Driver); err != nil {
		return invalid("%v", err)
	}
	if c.Store.DSN == "" {
		return invalid("store.dsn is required")
	}
	if c.Store.BusyTimeoutMS < 0 {
		return invalid("store.busy_timeout_ms must be >= 0, got %d", c.Store.BusyTimeoutMS)
	}

	if len(c.Bench.Matrix) == 0 {
		return invalid("bench.matrix must contain at least one case")
	}
	for _, cs := range c.Bench.Matrix {
		if err := cs.Validate(); err != nil {
			return apperrors.NewValidationError(apperrors.CodeInvalidCase, err.Error())
		}
	}
	if c.Bench.InspectLimit < 0 {
		return invalid("bench.inspect_limit must be >= 0, got %d", c.Bench.InspectLimit)
	}

	if _, err := c.ReportFormats(); err != nil {
		return invalid("%v", err)
	}
	switch c.Report.Publish {
	case PublishNone, PublishLocal:
	case PublishS3:
		if c.Report.S3.Bucket == "" {
			return invalid("report.s3.bucket is required when publishing to s3")
		}
	default:
		return invalid("invalid report.publish: %s (must be local or s3)", c.Report.Publish)
	}

	return nil
}

// ReportFormats parses Report.Formats.
func (c *Config) ReportFormats() ([]report.Format, error) {
	return report.ParseFormats(strings.Join(c.Report.Formats, ","))
}

// GatewayOptions returns the options for gateway.Open.
func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		Driver:      c.Store.Driver,
		DSN:         c.Store.DSN,
		JournalMode: c.Store.JournalMode,
		BusyTimeout: msDuration(c.Store.BusyTimeoutMS),
	}
}

// EnsureDirectories creates the SQLite parent directory and report directories.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Store.Driver != gateway.DriverPostgres && c.Store.DSN != ":memory:" {
		dirs = append(dirs, filepath.Dir(strings.SplitN(c.Store.DSN, "?", 2)[0]))
	}
	dirs = append(dirs, c.Report.Dir, c.Report.LocalPath)

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML, JSON or HCL file on top of
// DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".hcl":
		if err := decodeHCL(data, path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

func invalid(format string, args ...interface{}) error {
	return apperrors.NewValidationError(apperrors.CodeInvalidConfig, fmt.Sprintf(format, args...))
}
