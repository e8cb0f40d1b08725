package report

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-stats/domain/issue"
)

func TestSeriesFillsGaps(t *testing.T) {
	agg := Build([]issue.Record{
		rec("SCS-1", issue.Bug, 1, 1, 2),
		rec("SCS-2", issue.Story, 4, 1, 5),
	})

	rows := slices.Collect(Series(agg, day(1), day(5)))
	require.Len(t, rows, 5, "one row per calendar day, bounds included")

	for i, row := range rows {
		assert.Equal(t, day(i+1), row.Day, "strictly chronological")
	}
	assert.Equal(t, [6]float64{1, 2, 0, 0, 0, 0}, rows[0].Metrics)
	assert.Equal(t, [6]float64{}, rows[1].Metrics, "silent day is all zeros")
	assert.Equal(t, [6]float64{}, rows[2].Metrics)
	assert.Equal(t, [6]float64{0, 0, 0, 0, 1, 5}, rows[3].Metrics)
	assert.Equal(t, [6]float64{}, rows[4].Metrics)
}

func TestSeriesRowCount(t *testing.T) {
	agg := Aggregate{}
	tests := []struct {
		name       string
		start, end int
		want       int
	}{
		{name: "single day", start: 3, end: 3, want: 1},
		{name: "full month", start: 1, end: 31, want: 31},
		{name: "end before start", start: 5, end: 4, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := slices.Collect(Series(agg, day(tt.start), day(tt.end)))
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestSeriesIsRestartable(t *testing.T) {
	agg := Build([]issue.Record{rec("SCS-1", issue.Task, 2, 1, 1)})
	seq := Series(agg, day(1), day(3))

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second, "ranging twice yields identical rows")
}

func TestSeriesEarlyBreak(t *testing.T) {
	agg := Aggregate{}
	n := 0
	for range Series(agg, day(1), day(100)) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
