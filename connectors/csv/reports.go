package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"jira-stats/domain/issue"
	"jira-stats/domain/report"
)

// dayLayout is how day cells appear in the report files.
const dayLayout = "02.01.2006"

// Tables bundles everything one calculate run produces for serialization.
type Tables struct {
	Stats        []report.StatsRow
	Distribution []report.PointRow
	CycleBlocks  []report.CycleTimeBlock
	Outliers     []report.Outlier
	CycleTimes   map[issue.Type][]report.CycleTimeEntry
	DaysPerPoint map[issue.Type][]report.PaceEntry
	BrowseURL    string
}

// WriteAll writes every report table using the original file-naming scheme:
// <base>_statistics.csv, <base>_distribution.csv and so on.
func WriteAll(base string, t Tables) error {
	if err := WriteStatistics(base+"_statistics.csv", t.Stats); err != nil {
		return err
	}
	if err := WriteDistribution(base+"_distribution.csv", t.Distribution); err != nil {
		return err
	}
	if err := WriteDaysDistribution(base+"_days_distribution.csv", t.CycleBlocks); err != nil {
		return err
	}
	if err := WriteOutliers(base+"_biggies.csv", t.Outliers, t.BrowseURL); err != nil {
		return err
	}
	for _, typ := range issue.Types {
		if err := WriteCycleTimes(fmt.Sprintf("%s_boarddays_%s.csv", base, typ), t.CycleTimes[typ]); err != nil {
			return err
		}
		if err := WriteDaysPerPoint(fmt.Sprintf("%s_days_per_point_%s.csv", base, typ), t.DaysPerPoint[typ]); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatistics writes the time-series table: raw daily metrics, moving
// averages and points-per-count ratios, one row per calendar day.
func WriteStatistics(path string, rows []report.StatsRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(report.Header); err != nil {
		return err
	}
	for _, r := range rows {
		row := make([]string, 0, len(report.Header))
		row = append(row, formatDay(r.Day))
		for _, v := range r.Metrics {
			row = append(row, formatNumber(v))
		}
		for _, v := range r.Averages {
			row = append(row, formatNumber(v))
		}
		for _, v := range r.Ratios {
			row = append(row, formatNumber(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteDistribution writes the point-value histogram sorted ascending by
// point value.
func WriteDistribution(path string, rows []report.PointRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"points", "bug", "task", "story"}); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{formatNumber(r.Points)}
		for _, c := range r.Counts {
			row = append(row, strconv.Itoa(c))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteDaysDistribution writes the cycle-time distribution as per-point-value
// blocks: a "<points> points" headline followed by days,count pairs. The
// block layout is not a regular CSV table, so it is written directly.
func WriteDaysDistribution(path string, blocks []report.CycleTimeBlock) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, b := range blocks {
		if _, err := fmt.Fprintf(f, "\n%s points\n", formatNumber(b.Points)); err != nil {
			return err
		}
		for _, p := range b.Pairs {
			if _, err := fmt.Fprintf(f, "%d,%d\n", p.Days, p.Count); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteCycleTimes writes one type's (day, board days, issue key) listing.
func WriteCycleTimes(path string, entries []report.CycleTimeEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	for _, e := range entries {
		row := []string{formatDay(e.Day), strconv.Itoa(e.Days), e.IssueKey}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteDaysPerPoint writes one type's per-point pace listing.
func WriteDaysPerPoint(path string, entries []report.PaceEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	for _, e := range entries {
		row := []string{
			formatDay(e.Day),
			formatNumber(e.PerPoint),
			formatNumber(e.Points),
			strconv.Itoa(e.Days),
			e.IssueKey,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteOutliers writes the big-points listing. Issue keys are expanded to
// browse URLs when a base URL is known.
func WriteOutliers(path string, outliers []report.Outlier, browseURL string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"date", "type", "points", "URL"}); err != nil {
		return err
	}
	for _, o := range outliers {
		url := o.IssueKey
		if browseURL != "" {
			url = browseURL + "/browse/" + o.IssueKey
		}
		row := []string{formatDay(o.Day), o.Type.String(), formatNumber(o.Points), url}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatDay(d time.Time) string { return d.Format(dayLayout) }

// formatNumber renders a metric without a trailing ".0" for whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
