package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arkilian/syncbench/pkg/types"
)

// EnvPrefix prefixes every environment variable the harness reads.
const EnvPrefix = "SYNCBENCH_"

// LoadFromEnv overlays SYNCBENCH_* environment variables onto cfg.
// Malformed numeric, boolean or matrix values are reported, not ignored.
func LoadFromEnv(cfg *Config) error {
	// Store configuration
	if v := getenv("DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := getenv("DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := getenv("JOURNAL_MODE"); v != "" {
		cfg.Store.JournalMode = v
	}
	if err := envInt("BUSY_TIMEOUT_MS", &cfg.Store.BusyTimeoutMS); err != nil {
		return err
	}

	// Bench configuration
	if v := getenv("MATRIX"); v != "" {
		m, err := ParseMatrix(v)
		if err != nil {
			return fmt.Errorf("%sMATRIX: %w", EnvPrefix, err)
		}
		cfg.Bench.Matrix = m
	}
	if v := getenv("STRATEGIES"); v != "" {
		cfg.Bench.Strategies = SplitList(v)
	}
	if err := envBool("FAIL_FAST", &cfg.Bench.FailFast); err != nil {
		return err
	}
	if err := envInt("INSPECT_LIMIT", &cfg.Bench.InspectLimit); err != nil {
		return err
	}

	// Report configuration
	if v := getenv("REPORT_DIR"); v != "" {
		cfg.Report.Dir = v
	}
	if v := getenv("REPORT_FORMATS"); v != "" {
		cfg.Report.Formats = SplitList(v)
	}
	if err := envBool("REPORT_COMPRESS", &cfg.Report.Compress); err != nil {
		return err
	}
	if v := getenv("REPORT_PUBLISH"); v != "" {
		cfg.Report.Publish = v
	}
	if v := getenv("REPORT_LOCAL_PATH"); v != "" {
		cfg.Report.LocalPath = v
	}
	if v := getenv("S3_BUCKET"); v != "" {
		cfg.Report.S3.Bucket = v
	}
	if v := getenv("S3_REGION"); v != "" {
		cfg.Report.S3.Region = v
	}
	if v := getenv("S3_ENDPOINT"); v != "" {
		cfg.Report.S3.Endpoint = v
	}
	if v := getenv("S3_PREFIX"); v != "" {
		cfg.Report.S3.Prefix = v
	}
	return envBool("S3_USE_PATH_STYLE", &cfg.Report.S3.UsePathStyle)
}

// ParseMatrix parses "1x1000,2x1000" into cases. Every case must be valid.
func ParseMatrix(s string) ([]types.Case, error) {
	var matrix []types.Case
	for _, part := range SplitList(s) {
		dims := strings.SplitN(strings.ToLower(part), "x", 2)
		if len(dims) != 2 {
			return nil, fmt.Errorf("invalid case %q (want BATCHxREPEAT)", part)
		}
		batch, err := strconv.Atoi(strings.TrimSpace(dims[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid batch size in %q: %w", part, err)
		}
		repeat, err := strconv.Atoi(strings.TrimSpace(dims[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid repeat count in %q: %w", part, err)
		}

		c := types.Case{BatchSize: batch, RepeatCount: repeat}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		matrix = append(matrix, c)
	}
	if len(matrix) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	return matrix, nil
}

// FormatMatrix is the inverse of ParseMatrix.
func FormatMatrix(matrix []types.Case) string {
	parts := make([]string, len(matrix))
	for i, c := range matrix {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

func envInt(name string, dst *int) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

func envBool(name string, dst *bool) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = b
	return nil
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
