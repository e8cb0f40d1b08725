package report

import (
	"math"
	"sort"
	"time"

	lo "github.com/samber/lo"

	"jira-stats/domain/issue"
)

// CycleTime is one issue's inclusive day count on the board.
type CycleTime struct {
	IssueKey string
	Days     int
}

// PointPace relates an estimated issue's board time to its estimate.
// PerPoint is days divided by points, rounded to one decimal.
type PointPace struct {
	IssueKey string
	Points   float64
	Days     int
	PerPoint float64
}

// TypeMetrics accumulates one day's resolutions for a single issue type.
type TypeMetrics struct {
	Count        int
	Points       float64
	CycleTimes   []CycleTime
	DaysPerPoint []PointPace
}

// DayBucket holds the per-type metrics of one calendar day.
type DayBucket struct {
	Bug   TypeMetrics
	Task  TypeMetrics
	Story TypeMetrics
}

// Metrics returns the bucket slot for a type.
func (b *DayBucket) Metrics(t issue.Type) *TypeMetrics {
	switch t {
	case issue.Bug:
		return &b.Bug
	case issue.Task:
		return &b.Task
	default:
		return &b.Story
	}
}

// Aggregate maps each calendar day with at least one resolution to its
// bucket. The key is the midnight-truncated resolution date; consumers derive
// chronological order from the date range, never from map order.
type Aggregate map[time.Time]*DayBucket

// Build folds records into an Aggregate. Input order is irrelevant;
// each record lands in the bucket of its resolution day. Buckets are created
// lazily on first use.
func Build(records []issue.Record) Aggregate {
	agg := make(Aggregate, len(records))
	for _, r := range records {
		bucket, ok := agg[r.Resolved]
		if !ok {
			bucket = &DayBucket{}
			agg[r.Resolved] = bucket
		}
		m := bucket.Metrics(r.Type)
		m.Count++
		days := r.CycleDays()
		m.CycleTimes = append(m.CycleTimes, CycleTime{IssueKey: r.Key, Days: days})
		if r.Estimated() {
			m.Points += r.Points
			m.DaysPerPoint = append(m.DaysPerPoint, PointPace{
				IssueKey: r.Key,
				Points:   r.Points,
				Days:     days,
				PerPoint: math.Round(float64(days)/r.Points*10) / 10,
			})
		}
	}
	return agg
}

// Days returns the aggregate's day keys sorted ascending.
func (a Aggregate) Days() []time.Time {
	days := lo.Keys(a)
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
