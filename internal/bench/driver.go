package bench

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/internal/gateway"
	"github.com/arkilian/syncbench/internal/generator"
	"github.com/arkilian/syncbench/internal/observability"
	"github.com/arkilian/syncbench/internal/report"
	"github.com/arkilian/syncbench/internal/timing"
	"github.com/arkilian/syncbench/pkg/types"
)

// Separator frames the output of each case.
const Separator = "------------------------------------"

// Store is the gateway surface the driver runs against.
type Store interface {
	gateway.Store
	Fingerprint(ctx context.Context) (string, error)
}

// Options configures a Driver.
type Options struct {
	// Out receives the case headers and cost lines (default os.Stdout)
	Out io.Writer

	// Strategies selects strategies by name; empty runs all of them
	Strategies []string

	// FailFast aborts the run on the first write failure
	FailFast bool

	// Stats, when set, is reset at the start of a run and attached to the report
	Stats *observability.OpStats

	// DriverName is recorded in the report
	DriverName string
}

// Driver runs the strategy phases over a matrix of cases.
type Driver struct {
	store    Store
	opts     Options
	selected map[string]bool
}

// New creates a driver. Unknown strategy names are a validation error.
func New(store Store, opts Options) (*Driver, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	selected := make(map[string]bool)
	if len(opts.Strategies) == 0 {
		for _, s := range Strategies() {
			selected[s.Name()] = true
		}
	}
	for _, name := range opts.Strategies {
		if _, err := LookupStrategy(name); err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidConfig, err.Error())
		}
		selected[name] = true
	}

	return &Driver{store: store, opts: opts, selected: selected}, nil
}

// Run measures every selected strategy for every case, in matrix order.
// The returned report holds whatever completed, also when err is non-nil.
func (d *Driver) Run(ctx context.Context, matrix []types.Case) (*report.Report, error) {
	for _, c := range matrix {
		if err := c.Validate(); err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidCase, err.Error())
		}
	}

	rep := report.New(d.opts.DriverName)
	if d.opts.Stats != nil {
		d.opts.Stats.Reset()
	}

	var runErr error
	for _, c := range matrix {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if runErr = d.runCase(ctx, rep, c); runErr != nil {
			break
		}
	}

	var ops []observability.OpSnapshot
	if d.opts.Stats != nil {
		ops = d.opts.Stats.Snapshot()
	}
	rep.Finish(ops)
	return rep, runErr
}

func (d *Driver) runCase(ctx context.Context, rep *report.Report, c types.Case) error {
	fmt.Fprintln(d.opts.Out, Separator)
	fmt.Fprintf(d.opts.Out, "batch count: %d, repeat count: %d\n", c.BatchSize, c.RepeatCount)
	defer fmt.Fprintln(d.opts.Out, Separator)

	compare := d.selected[StrategyReplaceIntoSplit] && d.selected[StrategyDiffThenApply]
	var reference string

	for p := PhaseResetBaseline; p != PhaseDone; p = p.Next() {
		s := p.Strategy()
		if s == nil || !d.selected[s.Name()] {
			continue
		}

		res, err := d.runPhase(ctx, c, s)
		if err == nil && compare {
			fp, fpErr := d.store.Fingerprint(ctx)
			if fpErr != nil {
				return apperrors.NewInternalError("failed to fingerprint store", fpErr)
			}
			switch p {
			case PhaseReplaceIntoSplit:
				reference = fp
			case PhaseDiffThenApply:
				if reference != "" {
					consistent := fp == reference
					res.Consistent = &consistent
					if !consistent {
						log.Printf("[WARN] bench: %s end state differs from %s for case %s",
							s.Label(), ReplaceIntoSplit{}.Label(), c)
					}
				}
			}
		}
		rep.Add(res)
		if err != nil {
			return err
		}
	}
	return nil
}

// runPhase resets the store, generates the case's batches and applies s to
// each of them inside one timing window. Generation and reset are excluded
// from the measurement.
func (d *Driver) runPhase(ctx context.Context, c types.Case, s Strategy) (report.Result, error) {
	res := report.Result{
		BatchSize:   c.BatchSize,
		RepeatCount: c.RepeatCount,
		Strategy:    s.Name(),
		Label:       s.Label(),
		Records:     c.Total(),
	}

	if err := d.store.ResetAll(ctx, generator.Baseline(c)); err != nil {
		res.Failures = 1
		res.Unsynced = c.Total()
		return res, err
	}

	var batches []types.Batch
	var err error
	if s.Split() {
		batches, err = generator.SplitBatches(c, Suffix(s))
	} else {
		batches, err = generator.Batches(c, Suffix(s))
	}
	if err != nil {
		return res, apperrors.NewInternalError("failed to generate batches", err)
	}

	var total Outcome
	err = d.applyAll(ctx, s, batches, &total, &res)
	res.Written = total.Written
	res.Inserted = total.Inserted
	res.Updated = total.Updated
	res.Unsynced = total.Unsynced
	return res, err
}

func (d *Driver) applyAll(ctx context.Context, s Strategy, batches []types.Batch, total *Outcome, res *report.Result) error {
	rec := timing.Start(s.Label(),
		timing.WithWriter(d.opts.Out),
		timing.WithObserver(func(_ string, elapsed time.Duration) {
			res.Elapsed = elapsed
		}),
	)
	defer rec.Stop()

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			for _, rest := range batches[i:] {
				total.Unsynced += len(rest)
			}
			return err
		}

		out, err := s.Apply(ctx, d.store, batch)
		total.add(out)
		if err == nil {
			continue
		}
		res.Failures++

		switch {
		case apperrors.GetCategory(err) == apperrors.ErrCategoryTransaction:
			log.Printf("[WARN] bench: %s: %v", s.Label(), err)
			continue
		case apperrors.GetCategory(err) == apperrors.ErrCategoryWrite && !d.opts.FailFast:
			log.Printf("[WARN] bench: %s: %v", s.Label(), err)
			continue
		}

		for _, rest := range batches[i+1:] {
			total.Unsynced += len(rest)
		}
		return err
	}
	return nil
}
