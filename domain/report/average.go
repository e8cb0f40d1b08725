package report

import (
	"iter"

	"gonum.org/v1/gonum/stat"
)

// Window is the trailing moving-average interval in days.
const Window = 28

// StatsRow extends a series row with its trailing averages and the per-type
// points-per-count ratios derived from them.
type StatsRow struct {
	SeriesRow
	Averages [metricCols]float64
	Ratios   [3]float64
}

// Header is the column layout of the statistics table.
var Header = []string{
	"date", "bug_count", "bug_points", "task_count", "task_points",
	"story_count", "story_points", "avg_bug_count", "avg_bug_points",
	"avg_task_count", "avg_task_points", "avg_story_count", "avg_story_points",
	"bug p/c", "task p/c", "story p/c",
}

// window is a fixed-capacity ring buffer over one metric column. Once full it
// stays full; each push evicts the oldest value.
type window struct {
	buf  []float64
	head int
	n    int
}

func newWindow(capacity int) *window {
	return &window{buf: make([]float64, capacity)}
}

func (w *window) push(v float64) {
	if w.n < len(w.buf) {
		w.buf[(w.head+w.n)%len(w.buf)] = v
		w.n++
		return
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// mean is the arithmetic mean of the buffered values, or 0 while the window
// is still warming up. Order inside the buffer does not matter for the mean.
func (w *window) mean() float64 {
	if w.n < len(w.buf) {
		return 0
	}
	return stat.Mean(w.buf, nil)
}

// WithAverages decorates the series with trailing moving averages over a
// fixed interval. The first interval−1 rows carry explicit zero averages;
// from then on each average covers the most recent interval values including
// the current row. Ratios are computed from the averaged values only.
func WithAverages(rows iter.Seq[SeriesRow], interval int) iter.Seq[StatsRow] {
	return func(yield func(StatsRow) bool) {
		windows := [metricCols]*window{}
		for i := range windows {
			windows[i] = newWindow(interval)
		}
		for row := range rows {
			out := StatsRow{SeriesRow: row}
			for i, v := range row.Metrics {
				windows[i].push(v)
				out.Averages[i] = windows[i].mean()
			}
			out.Ratios = pointsPerCount(out.Averages)
			if !yield(out) {
				return
			}
		}
	}
}

// pointsPerCount divides each averaged points column by its count column.
// A zero count yields a zero ratio, never a division error.
func pointsPerCount(avg [metricCols]float64) [3]float64 {
	var ratios [3]float64
	for i := 0; i < 3; i++ {
		count, points := avg[2*i], avg[2*i+1]
		if count != 0 {
			ratios[i] = points / count
		}
	}
	return ratios
}
