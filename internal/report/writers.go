package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/xuri/excelize/v2"
)

var resultHeader = []string{
	"batch_size", "repeat_count", "strategy", "label", "elapsed_ms",
	"records", "written", "inserted", "updated", "failures", "unsynced", "consistent",
}

func resultRow(res Result) []string {
	return []string{
		strconv.Itoa(res.BatchSize),
		strconv.Itoa(res.RepeatCount),
		res.Strategy,
		res.Label,
		strconv.FormatInt(res.Elapsed.Milliseconds(), 10),
		strconv.Itoa(res.Records),
		strconv.Itoa(res.Written),
		strconv.Itoa(res.Inserted),
		strconv.Itoa(res.Updated),
		strconv.Itoa(res.Failures),
		strconv.Itoa(res.Unsynced),
		consistentString(res.Consistent),
	}
}

// WriteText renders an aligned summary table.
func WriteText(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "run %s driver=%s started=%s finished=%s\n\n",
		r.RunID, r.Driver, r.StartedAt.Format(time.RFC3339), r.FinishedAt.Format(time.RFC3339))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tREPEAT\tSTRATEGY\tELAPSED(ms)\tRECORDS\tWRITTEN\tINSERTED\tUPDATED\tFAILURES\tUNSYNCED\tCONSISTENT")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			res.BatchSize, res.RepeatCount, res.Label, res.Elapsed.Milliseconds(),
			res.Records, res.Written, res.Inserted, res.Updated, res.Failures, res.Unsynced,
			consistentString(res.Consistent))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Ops) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OP\tCALLS\tFAILURES\tROWS\tTOTAL(ms)\tLAST ERROR")
	for _, op := range r.Ops {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			op.Op, op.Calls, op.Failures, op.Rows, op.Total.Milliseconds(), op.LastError)
	}
	return tw.Flush()
}

// WriteJSON encodes the full report.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadJSON decodes a report written by WriteJSON.
func ReadJSON(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("report: failed to decode: %w", err)
	}
	return &r, nil
}

// WriteCSV writes one row per result with a header row.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for _, res := range r.Results {
		if err := cw.Write(resultRow(res)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Sheet names in the XLSX workbook.
const (
	SheetResults = "Results"
	SheetOps     = "Operations"
)

// WriteXLSX writes a workbook with a results sheet and an operations sheet.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return err
	}
	if err := setRow(f, SheetResults, 1, toCells(resultHeader)); err != nil {
		return err
	}
	for i, res := range r.Results {
		row := []interface{}{
			res.BatchSize, res.RepeatCount, res.Strategy, res.Label,
			res.Elapsed.Milliseconds(), res.Records, res.Written, res.Inserted, res.Updated,
			res.Failures, res.Unsynced, consistentString(res.Consistent),
		}
		if err := setRow(f, SheetResults, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetOps); err != nil {
		return err
	}
	if err := setRow(f, SheetOps, 1, toCells([]string{"op", "calls", "failures", "rows", "total_ms", "last_error"})); err != nil {
		return err
	}
	for i, op := range r.Ops {
		row := []interface{}{op.Op, op.Calls, op.Failures, op.Rows, op.Total.Milliseconds(), op.LastError}
		if err := setRow(f, SheetOps, i+2, row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// writeFormat dispatches to the writer for f.
func writeFormat(w io.Writer, f Format, r *Report) error {
	switch f {
	case FormatText:
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	default:
		return fmt.Errorf("report: unknown format %q", f)
	}
}
