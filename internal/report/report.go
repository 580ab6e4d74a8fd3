// Package report collects benchmark results and renders them as text, JSON,
// CSV and XLSX, optionally snappy-compressed, for local storage or upload.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkilian/syncbench/internal/observability"
	"github.com/arkilian/syncbench/pkg/types"
)

// Result is the measurement of one strategy over one case.
type Result struct {
	BatchSize   int           `json:"batch_size"`
	RepeatCount int           `json:"repeat_count"`
	Strategy    string        `json:"strategy"`
	Label       string        `json:"label"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Records     int           `json:"records"`
	Written     int           `json:"written"`
	Inserted    int           `json:"inserted"`
	Updated     int           `json:"updated"`
	Failures    int           `json:"failures"`
	Unsynced    int           `json:"unsynced"`

	// Consistent is set on strategies whose end state is compared against
	// another strategy's; nil when no comparison applies.
	Consistent *bool `json:"consistent,omitempty"`
}

// Case returns the configuration the result was measured under.
func (r Result) Case() types.Case {
	return types.Case{BatchSize: r.BatchSize, RepeatCount: r.RepeatCount}
}

// Report is a whole benchmark run.
type Report struct {
	RunID      string                     `json:"run_id"`
	Driver     string                     `json:"driver"`
	StartedAt  time.Time                  `json:"started_at"`
	FinishedAt time.Time                  `json:"finished_at"`
	Results    []Result                   `json:"results"`
	Ops        []observability.OpSnapshot `json:"ops,omitempty"`
}

// New starts a report for a run against driver.
func New(driver string) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Driver:    driver,
		StartedAt: time.Now().UTC(),
	}
}

// Add appends a result.
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Finish stamps the end time and attaches the operation counters.
func (r *Report) Finish(ops []observability.OpSnapshot) {
	r.FinishedAt = time.Now().UTC()
	r.Ops = ops
}

// Lookup finds the result for a strategy under case c.
func (r *Report) Lookup(c types.Case, strategy string) (*Result, bool) {
	for i := range r.Results {
		res := &r.Results[i]
		if res.Case() == c && res.Strategy == strategy {
			return res, true
		}
	}
	return nil, false
}

// Inconsistent returns results flagged as not matching their reference end state.
func (r *Report) Inconsistent() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Consistent != nil && !*res.Consistent {
			out = append(out, res)
		}
	}
	return out
}

// Format is a report encoding, named by its file extension.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatCSV, FormatXLSX}
}

// ParseFormats parses a comma-separated list such as "json,csv".
// "all" selects every format; "text" is accepted for txt.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == "all" {
			return Formats(), nil
		}
		if name == "text" {
			name = string(FormatText)
		}

		f := Format(name)
		switch f {
		case FormatText, FormatJSON, FormatCSV, FormatXLSX:
		default:
			return nil, fmt.Errorf("report: unknown format %q", part)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func consistentString(c *bool) string {
	switch {
	case c == nil:
		return "-"
	case *c:
		return "yes"
	default:
		return "NO"
	}
}
