package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/arkilian/syncbench/pkg/types"
)

// hclFile is the flat HCL layout:
//
//	driver = "sqlite3"
//	dsn    = "bench.db"
//	case {
//	  batch_size   = 10
//	  repeat_count = 1000
//	}
//
// Omitted attributes keep their current value; case blocks replace the
// matrix only when at least one is present.
type hclFile struct {
	Driver        string       `hcl:"driver,optional"`
	DSN           string       `hcl:"dsn,optional"`
	JournalMode   string       `hcl:"journal_mode,optional"`
	BusyTimeoutMS int          `hcl:"busy_timeout_ms,optional"`
	Cases         []types.Case `hcl:"case,block"`
	Strategies    []string     `hcl:"strategies,optional"`
	FailFast      bool         `hcl:"fail_fast,optional"`
	InspectLimit  int          `hcl:"inspect_limit,optional"`
	ReportDir     string       `hcl:"report_dir,optional"`
	ReportFormats []string     `hcl:"report_formats,optional"`
	Compress      bool         `hcl:"compress,optional"`
	Publish       string       `hcl:"publish,optional"`
	LocalPath     string       `hcl:"local_path,optional"`
	S3Bucket      string       `hcl:"s3_bucket,optional"`
	S3Region      string       `hcl:"s3_region,optional"`
	S3Endpoint    string       `hcl:"s3_endpoint,optional"`
	S3Prefix      string       `hcl:"s3_prefix,optional"`
	S3PathStyle   bool         `hcl:"s3_use_path_style,optional"`
}

func decodeHCL(data []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL config: %s", diags.Error())
	}

	flat := hclFile{
		Driver:        cfg.Store.Driver,
		DSN:           cfg.Store.DSN,
		JournalMode:   cfg.Store.JournalMode,
		BusyTimeoutMS: cfg.Store.BusyTimeoutMS,
		Strategies:    cfg.Bench.Strategies,
		FailFast:      cfg.Bench.FailFast,
		InspectLimit:  cfg.Bench.InspectLimit,
		ReportDir:     cfg.Report.Dir,
		ReportFormats: cfg.Report.Formats,
		Compress:      cfg.Report.Compress,
		Publish:       cfg.Report.Publish,
		LocalPath:     cfg.Report.LocalPath,
		S3Bucket:      cfg.Report.S3.Bucket,
		S3Region:      cfg.Report.S3.Region,
		S3Endpoint:    cfg.Report.S3.Endpoint,
		S3Prefix:      cfg.Report.S3.Prefix,
		S3PathStyle:   cfg.Report.S3.UsePathStyle,
	}
	if diags := gohcl.DecodeBody(file.Body, nil, &flat); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL config: %s", diags.Error())
	}

	cfg.Store = StoreConfig{
		Driver:        flat.Driver,
		DSN:           flat.DSN,
		JournalMode:   flat.JournalMode,
		BusyTimeoutMS: flat.BusyTimeoutMS,
	}
	if len(flat.Cases) > 0 {
		cfg.Bench.Matrix = flat.Cases
	}
	cfg.Bench.Strategies = flat.Strategies
	cfg.Bench.FailFast = flat.FailFast
	cfg.Bench.InspectLimit = flat.InspectLimit
	cfg.Report = ReportConfig{
		Dir:       flat.ReportDir,
		Formats:   flat.ReportFormats,
		Compress:  flat.Compress,
		Publish:   flat.Publish,
		LocalPath: flat.LocalPath,
		S3: S3Config{
			Bucket:       flat.S3Bucket,
			Region:       flat.S3Region,
			Endpoint:     flat.S3Endpoint,
			Prefix:       flat.S3Prefix,
			UsePathStyle: flat.S3PathStyle,
		},
	}
	return nil
}

// EncodeHCL renders cfg in the flat HCL layout read by LoadFromFile.
func EncodeHCL(cfg *Config) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("driver", cty.StringVal(cfg.Store.Driver))
	root.SetAttributeValue("dsn", cty.StringVal(cfg.Store.DSN))
	root.SetAttributeValue("journal_mode", cty.StringVal(cfg.Store.JournalMode))
	root.SetAttributeValue("busy_timeout_ms", cty.NumberIntVal(int64(cfg.Store.BusyTimeoutMS)))
	root.AppendNewline()

	for _, c := range cfg.Bench.Matrix {
		block := root.AppendNewBlock("case", nil).Body()
		block.SetAttributeValue("batch_size", cty.NumberIntVal(int64(c.BatchSize)))
		block.SetAttributeValue("repeat_count", cty.NumberIntVal(int64(c.RepeatCount)))
	}
	root.AppendNewline()

	if len(cfg.Bench.Strategies) > 0 {
		root.SetAttributeValue("strategies", stringList(cfg.Bench.Strategies))
	}
	root.SetAttributeValue("fail_fast", cty.BoolVal(cfg.Bench.FailFast))
	root.SetAttributeValue("inspect_limit", cty.NumberIntVal(int64(cfg.Bench.InspectLimit)))
	root.AppendNewline()

	root.SetAttributeValue("report_dir", cty.StringVal(cfg.Report.Dir))
	if len(cfg.Report.Formats) > 0 {
		root.SetAttributeValue("report_formats", stringList(cfg.Report.Formats))
	}
	root.SetAttributeValue("compress", cty.BoolVal(cfg.Report.Compress))
	root.SetAttributeValue("publish", cty.StringVal(cfg.Report.Publish))
	if cfg.Report.LocalPath != "" {
		root.SetAttributeValue("local_path", cty.StringVal(cfg.Report.LocalPath))
	}
	if cfg.Report.S3.Bucket != "" {
		root.SetAttributeValue("s3_bucket", cty.StringVal(cfg.Report.S3.Bucket))
		root.SetAttributeValue("s3_region", cty.StringVal(cfg.Report.S3.Region))
		root.SetAttributeValue("s3_endpoint", cty.StringVal(cfg.Report.S3.Endpoint))
		root.SetAttributeValue("s3_prefix", cty.StringVal(cfg.Report.S3.Prefix))
		root.SetAttributeValue("s3_use_path_style", cty.BoolVal(cfg.Report.S3.UsePathStyle))
	}

	return f.Bytes()
}

// Export writes cfg to path in HCL format.
func Export(path string, cfg *Config) error {
	if err := os.WriteFile(path, EncodeHCL(cfg), 0644); err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}
	return nil
}

func stringList(values []string) cty.Value {
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}
