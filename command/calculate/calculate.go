package calculate

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	lo "github.com/samber/lo"

	"jira-stats/connectors/config"
	ccsv "jira-stats/connectors/csv"
	"jira-stats/domain/issue"
	"jira-stats/domain/report"
)

// Run executes the calculate command: read a Jira export CSV, derive the
// day-by-day statistics and distributions, and write all report tables next
// to the input file.
//
// Usage:
//
//	jira-stats calculate [-out <base>] <export.csv>
func Run(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	out := fs.String("out", "", "base name for the output files (default: input name without extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("calculate: expected exactly one input file")
	}
	input := fs.Arg(0)

	rows, err := ccsv.ReadExport(input)
	if err != nil {
		return err
	}
	records, err := Normalize(rows)
	if err != nil {
		if errors.Is(err, issue.ErrEmptyInput) {
			log.Info().Str("input", input).Msg("calculate.empty")
			fmt.Fprintln(os.Stderr, "input file has no data, exiting")
			return nil
		}
		return err
	}

	base := *out
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	tables := Derive(records)
	// The browse URL for outlier links is optional; without a config the
	// bare issue keys are written.
	if cfg, err := config.Load(config.Path()); err == nil {
		tables.BrowseURL = cfg.Jira.URL
	}
	if err := ccsv.WriteAll(base, tables); err != nil {
		return err
	}

	printSummary(os.Stderr, records)
	log.Info().Int("records", len(records)).Str("base", base).Msg("calculate.done")
	return nil
}

// Normalize turns raw export rows (header first) into typed records.
// The first malformed row aborts the run; an export without data rows yields
// ErrEmptyInput.
func Normalize(rows [][]string) ([]issue.Record, error) {
	if len(rows) < 2 {
		return nil, issue.ErrEmptyInput
	}
	cols, err := ccsv.DetectColumns(rows[0])
	if err != nil {
		return nil, err
	}
	records := make([]issue.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := issue.ParseRecord(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Derive runs the whole reporting pipeline over normalized records. The date
// range spans the earliest through the latest resolution day.
func Derive(records []issue.Record) ccsv.Tables {
	agg := report.Build(records)
	start := lo.MinBy(records, func(a, b issue.Record) bool { return a.Resolved.Before(b.Resolved) }).Resolved
	end := lo.MaxBy(records, func(a, b issue.Record) bool { return a.Resolved.After(b.Resolved) }).Resolved

	t := ccsv.Tables{
		Stats:        slices.Collect(report.WithAverages(report.Series(agg, start, end), report.Window)),
		Distribution: report.BuildPointDistribution(agg).Rows(),
		CycleBlocks:  report.BuildCycleTimeDistribution(agg).Blocks(),
		Outliers:     report.FindOutliers(records),
		CycleTimes:   map[issue.Type][]report.CycleTimeEntry{},
		DaysPerPoint: map[issue.Type][]report.PaceEntry{},
	}
	for _, typ := range issue.Types {
		t.CycleTimes[typ] = report.CycleTimeListing(agg, typ)
		t.DaysPerPoint[typ] = report.DaysPerPointListing(agg, typ)
	}
	return t
}

// printSummary renders per-type totals so a run gives immediate feedback
// without opening the CSVs.
func printSummary(w io.Writer, records []issue.Record) {
	table := tablewriter.NewTable(w)
	table.Header([]string{"type", "count", "points", "estimated"})
	for _, typ := range issue.Types {
		ofType := lo.Filter(records, func(r issue.Record, _ int) bool { return r.Type == typ })
		points := lo.SumBy(ofType, func(r issue.Record) float64 { return r.Points })
		estimated := lo.CountBy(ofType, func(r issue.Record) bool { return r.Estimated() })
		table.Append([]string{
			typ.String(),
			strconv.Itoa(len(ofType)),
			strconv.FormatFloat(points, 'g', -1, 64),
			strconv.Itoa(estimated),
		})
	}
	table.Render()
}
