package csv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-stats/domain/issue"
	"jira-stats/domain/report"
)

var exportHeader = []string{
	"Issue key", "Issue id", "Issue Type",
	"Custom field (Story Points)", "Resolved", "board enter date",
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectColumns(t *testing.T) {
	// Column order in the export must not matter.
	header := []string{"Summary", "Resolved", "Issue key", "board enter date",
		"Issue Type", "Status", "Custom field (Story Points)"}
	cols, err := DetectColumns(header)
	require.NoError(t, err)

	assert.Equal(t, issue.Columns{Key: 2, Type: 4, Points: 6, Resolved: 1, BoardEntry: 3}, cols)
}

func TestDetectColumnsMissing(t *testing.T) {
	header := []string{"Issue key", "Issue Type", "Resolved", "board enter date"}
	_, err := DetectColumns(header)

	var missing *issue.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ColPoints, missing.Column)
}

func TestDetectColumnsExactMatch(t *testing.T) {
	// Lookup is by exact name; a renamed column must fail loudly.
	header := []string{"issue key", "Issue Type", "Custom field (Story Points)",
		"Resolved", "board enter date"}
	_, err := DetectColumns(header)
	require.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	rows := [][]string{
		exportHeader,
		{"SCS-1", "10001", "Story", "8", "04.01.21 11:13", "01.01.21 09:00"},
		{"SCS-2", "10002", "Bug", "", "05.01.21 08:30", "05.01.21 08:00"},
	}
	path := filepath.Join(t.TempDir(), "data", "export.csv")
	require.NoError(t, WriteExport(path, rows))

	got, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteStatistics(t *testing.T) {
	stats := []report.StatsRow{
		{
			SeriesRow: report.SeriesRow{Day: day(1), Metrics: [6]float64{1, 3, 0, 0, 0, 0}},
			Averages:  [6]float64{1, 3.5, 0, 0, 0, 0},
			Ratios:    [3]float64{3.5, 0, 0},
		},
	}
	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, WriteStatistics(path, stats))

	got, err := ReadExport(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, report.Header, got[0])
	assert.Equal(t, []string{"01.01.2024", "1", "3", "0", "0", "0", "0",
		"1", "3.5", "0", "0", "0", "0", "3.5", "0", "0"}, got[1])
}

func TestWriteDistribution(t *testing.T) {
	rows := []report.PointRow{
		{Points: 0.5, Counts: [3]int{0, 1, 0}},
		{Points: 8, Counts: [3]int{1, 0, 2}},
	}
	path := filepath.Join(t.TempDir(), "dist.csv")
	require.NoError(t, WriteDistribution(path, rows))

	got, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"points", "bug", "task", "story"},
		{"0.5", "0", "1", "0"},
		{"8", "1", "0", "2"},
	}, got)
}

func TestWriteDaysDistributionBlocks(t *testing.T) {
	blocks := []report.CycleTimeBlock{
		{Points: 3, Pairs: []report.CycleTimePair{{Days: 2, Count: 4}, {Days: 5, Count: 1}}},
		{Points: 8, Pairs: []report.CycleTimePair{{Days: 10, Count: 1}}},
	}
	path := filepath.Join(t.TempDir(), "days.csv")
	require.NoError(t, WriteDaysDistribution(path, blocks))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\n3 points\n2,4\n5,1\n\n8 points\n10,1\n", string(b))
}

func TestWriteOutliers(t *testing.T) {
	outliers := []report.Outlier{
		{Day: day(4), Type: issue.Story, Points: 8, IssueKey: "SCS-2"},
	}
	path := filepath.Join(t.TempDir(), "biggies.csv")
	require.NoError(t, WriteOutliers(path, outliers, "https://jira.example.com"))

	got, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "type", "points", "URL"},
		{"04.01.2024", "story", "8", "https://jira.example.com/browse/SCS-2"},
	}, got)
}

func TestWriteAllNaming(t *testing.T) {
	base := filepath.Join(t.TempDir(), "project")
	tables := Tables{
		CycleTimes:   map[issue.Type][]report.CycleTimeEntry{},
		DaysPerPoint: map[issue.Type][]report.PaceEntry{},
	}
	require.NoError(t, WriteAll(base, tables))

	for _, name := range []string{
		"project_statistics.csv",
		"project_distribution.csv",
		"project_days_distribution.csv",
		"project_biggies.csv",
		"project_boarddays_bug.csv",
		"project_boarddays_task.csv",
		"project_boarddays_story.csv",
		"project_days_per_point_bug.csv",
		"project_days_per_point_task.csv",
		"project_days_per_point_story.csv",
	} {
		_, err := os.Stat(filepath.Join(filepath.Dir(base), name))
		assert.NoError(t, err, name)
	}
}
