package report

import (
	"iter"
	"time"
)

// Metric column indexes within a series row, in report order.
const (
	BugCount = iota
	BugPoints
	TaskCount
	TaskPoints
	StoryCount
	StoryPoints
	metricCols
)

// SeriesRow is one calendar day of the gap-free time series.
type SeriesRow struct {
	Day     time.Time
	Metrics [metricCols]float64
}

// Series walks every calendar day in [start, end] inclusive and yields one
// row per day in chronological order. Days without resolutions yield all-zero
// metrics. An end before start yields nothing. The sequence can be ranged
// over any number of times and is deterministic for a given aggregate.
func Series(agg Aggregate, start, end time.Time) iter.Seq[SeriesRow] {
	return func(yield func(SeriesRow) bool) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			row := SeriesRow{Day: d}
			if bucket, ok := agg[d]; ok {
				row.Metrics = [metricCols]float64{
					float64(bucket.Bug.Count), bucket.Bug.Points,
					float64(bucket.Task.Count), bucket.Task.Points,
					float64(bucket.Story.Count), bucket.Story.Points,
				}
			}
			if !yield(row) {
				return
			}
		}
	}
}
