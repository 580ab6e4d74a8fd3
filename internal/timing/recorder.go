// Package timing provides a scoped stopwatch that reports elapsed wall-clock
// time exactly once, however the measured scope is left.
package timing

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Observer receives every measurement after it is emitted.
type Observer func(label string, elapsed time.Duration)

// Recorder measures one labelled scope. Use it as
//
//	rec := timing.Start("update")
//	defer rec.Stop()
type Recorder struct {
	label    string
	start    time.Time
	out      io.Writer
	observer Observer

	once    sync.Once
	elapsed time.Duration
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithWriter sets where the cost line is written. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(r *Recorder) {
		r.out = w
	}
}

// WithObserver registers a callback invoked once with the measurement.
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		r.observer = o
	}
}

// Start captures the start instant for label.
func Start(label string, opts ...Option) *Recorder {
	r := &Recorder{
		label: label,
		out:   os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	// time.Now carries a monotonic reading, so Since is immune to clock steps
	r.start = time.Now()
	return r
}

// Stop emits "<label> cost time: <ms> ms" on the first call and returns the
// elapsed duration. Later calls return the same duration without emitting.
func (r *Recorder) Stop() time.Duration {
	r.once.Do(func() {
		r.elapsed = time.Since(r.start)
		if r.out != nil {
			fmt.Fprintln(r.out, FormatLine(r.label, r.elapsed))
		}
		if r.observer != nil {
			r.observer(r.label, r.elapsed)
		}
	})
	return r.elapsed
}

// Label returns the recorder's label.
func (r *Recorder) Label() string {
	return r.label
}

// FormatLine renders a measurement in the harness output format.
func FormatLine(label string, elapsed time.Duration) string {
	return fmt.Sprintf("%s cost time: %d ms", label, elapsed.Milliseconds())
}
