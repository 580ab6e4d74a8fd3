// Package app provides the run lifecycle for syncbench: open the store and
// report sink, drive the matrix, save and publish the report, close.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/arkilian/syncbench/internal/bench"
	"github.com/arkilian/syncbench/internal/config"
	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/internal/report"
	"github.com/arkilian/syncbench/internal/storage"
)

// Options controls what the app prints besides the cost lines.
type Options struct {
	// Out receives benchmark output. Defaults to os.Stdout.
	Out io.Writer

	// Inspect prints the table contents after the run.
	Inspect bool

	// Verbose logs store settings and per-operation statistics.
	Verbose bool
}

// App owns the resources of a single benchmark run.
type App struct {
	cfg  *config.Config
	opts Options

	// Shared resources
	gw   *gateway.SQLGateway
	sink storage.ObjectStorage

	mu      sync.Mutex
	started bool
}

// New creates a new App with the given configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	// Resolve paths and validate
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &App{cfg: cfg, opts: opts}, nil
}

// Start opens the store and the report sink.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app is already started")
	}

	gw, err := gateway.Open(ctx, a.cfg.GatewayOptions())
	if err != nil {
		return err
	}
	a.gw = gw

	sink, err := openSink(ctx, a.cfg)
	if err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize report storage: %w", err)
	}
	a.sink = sink

	if a.opts.Verbose {
		log.Printf("Store: driver=%s dsn=%s matrix=%s",
			a.cfg.Store.Driver, a.cfg.Store.DSN, config.FormatMatrix(a.cfg.Bench.Matrix))
		if a.sink != nil {
			log.Printf("Report storage initialized: type=%s", a.cfg.Report.Publish)
		}
	}

	a.started = true
	return nil
}

// Run drives the configured matrix, then saves and publishes the report.
// The returned report is non-nil whenever the run got past validation, even
// when err is set.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if !started {
		return nil, fmt.Errorf("app is not started")
	}

	driver, err := bench.New(a.gw, bench.Options{
		Out:        a.opts.Out,
		Strategies: a.cfg.Bench.Strategies,
		FailFast:   a.cfg.Bench.FailFast,
		Stats:      a.gw.Stats(),
		DriverName: a.cfg.Store.Driver,
	})
	if err != nil {
		return nil, err
	}

	rep, runErr := driver.Run(ctx, a.cfg.Bench.Matrix)

	if a.opts.Inspect {
		if err := bench.Inspect(ctx, a.opts.Out, a.gw, a.cfg.Bench.InspectLimit); err != nil {
			log.Printf("[WARN] inspect failed: %v", err)
		}
	}

	if rep == nil {
		return nil, runErr
	}

	if a.opts.Verbose {
		for _, op := range rep.Ops {
			log.Printf("op %-20s calls=%d failures=%d rows=%d total=%v",
				op.Op, op.Calls, op.Failures, op.Rows, op.Total)
		}
	}
	for _, res := range rep.Inconsistent() {
		log.Printf("[WARN] %s diverged from replace into split for case %dx%d",
			res.Label, res.BatchSize, res.RepeatCount)
	}

	if err := a.saveReport(ctx, rep); err != nil {
		if runErr == nil {
			return rep, err
		}
		log.Printf("[WARN] %v", err)
	}
	return rep, runErr
}

// Close releases the store. Safe to call more than once.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = false
	return a.cleanup()
}

func (a *App) cleanup() error {
	if a.gw == nil {
		return nil
	}
	err := a.gw.Close()
	a.gw = nil
	return err
}

// saveReport writes the report files and publishes them when a sink is set.
func (a *App) saveReport(ctx context.Context, rep *report.Report) error {
	if a.cfg.Report.Dir == "" {
		return nil
	}

	formats, err := a.cfg.ReportFormats()
	if err != nil {
		return err
	}
	paths, err := report.Save(rep, a.cfg.Report.Dir, formats, a.cfg.Report.Compress)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Printf("Report written: %s", p)
	}

	if a.sink == nil {
		return nil
	}
	objects, err := report.Publish(ctx, a.sink, rep, paths)
	for _, obj := range objects {
		log.Printf("Report published: %s", obj)
	}
	return err
}

// openSink returns the configured publish target, or nil when publishing is off.
func openSink(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	switch cfg.Report.Publish {
	case config.PublishLocal:
		return storage.NewLocalStorage(cfg.Report.LocalPath)
	case config.PublishS3:
		s3Cfg := storage.DefaultS3Config()
		if cfg.Report.S3.Region != "" {
			s3Cfg.Region = cfg.Report.S3.Region
		}
		s3Cfg.Endpoint = cfg.Report.S3.Endpoint
		s3Cfg.Prefix = cfg.Report.S3.Prefix
		s3Cfg.UsePathStyle = cfg.Report.S3.UsePathStyle
		return storage.NewS3Storage(ctx, cfg.Report.S3.Bucket, s3Cfg)
	default:
		return nil, nil
	}
}
