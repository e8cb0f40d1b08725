package report

import (
	"sort"
	"time"

	lo "github.com/samber/lo"

	"jira-stats/domain/issue"
)

// PointsThreshold is the estimate above which an issue is reported as an
// outlier.
const PointsThreshold = 5

// PointDistribution counts, per point value, how many (day, type) buckets
// summed up to that value. Note the granularity: a day with three bug
// resolutions totaling 5 points contributes one occurrence at key 5, not
// three.
type PointDistribution map[float64][3]int

// BuildPointDistribution scans the aggregate's buckets and counts the summed
// daily points per type.
func BuildPointDistribution(agg Aggregate) PointDistribution {
	dist := PointDistribution{}
	for _, bucket := range agg {
		for i, t := range issue.Types {
			p := bucket.Metrics(t).Points
			if p > 0 {
				counts := dist[p]
				counts[i]++
				dist[p] = counts
			}
		}
	}
	return dist
}

// PointRow is one serialized point-distribution row.
type PointRow struct {
	Points float64
	Counts [3]int
}

// Rows serializes the distribution sorted ascending by point value.
func (d PointDistribution) Rows() []PointRow {
	keys := sortedKeys(d)
	return lo.Map(keys, func(p float64, _ int) PointRow {
		return PointRow{Points: p, Counts: d[p]}
	})
}

// CycleTimeDistribution counts, per point value, how often each board day
// count occurred. Only stories and tasks are considered; bugs are rarely
// estimated and would distort the picture.
type CycleTimeDistribution map[float64]map[int]int

// BuildCycleTimeDistribution scans story and task buckets that carry points
// and tallies their recorded cycle times.
func BuildCycleTimeDistribution(agg Aggregate) CycleTimeDistribution {
	dist := CycleTimeDistribution{}
	for _, bucket := range agg {
		for _, t := range []issue.Type{issue.Story, issue.Task} {
			m := bucket.Metrics(t)
			if m.Points <= 0 {
				continue
			}
			days, ok := dist[m.Points]
			if !ok {
				days = map[int]int{}
				dist[m.Points] = days
			}
			for _, ct := range m.CycleTimes {
				days[ct.Days]++
			}
		}
	}
	return dist
}

// CycleTimeBlock is the serialized form of one point value's cycle times.
type CycleTimeBlock struct {
	Points float64
	Pairs  []CycleTimePair
}

// CycleTimePair is one (board days, occurrences) entry of a block.
type CycleTimePair struct {
	Days  int
	Count int
}

// Blocks serializes the distribution as per-point-value blocks, point values
// and day counts both ascending.
func (d CycleTimeDistribution) Blocks() []CycleTimeBlock {
	return lo.Map(sortedKeys(d), func(p float64, _ int) CycleTimeBlock {
		days := lo.Keys(d[p])
		sort.Ints(days)
		pairs := lo.Map(days, func(day int, _ int) CycleTimePair {
			return CycleTimePair{Days: day, Count: d[p][day]}
		})
		return CycleTimeBlock{Points: p, Pairs: pairs}
	})
}

func sortedKeys[V any](m map[float64]V) []float64 {
	keys := lo.Keys(m)
	sort.Float64s(keys)
	return keys
}

// CycleTimeEntry is one issue's board time on a given day, for the per-type
// cycle-time listing.
type CycleTimeEntry struct {
	Day      time.Time
	Days     int
	IssueKey string
}

// CycleTimeListing flattens the aggregate's cycle times for one type, days
// ascending.
func CycleTimeListing(agg Aggregate, t issue.Type) []CycleTimeEntry {
	var out []CycleTimeEntry
	for _, day := range agg.Days() {
		for _, ct := range agg[day].Metrics(t).CycleTimes {
			out = append(out, CycleTimeEntry{Day: day, Days: ct.Days, IssueKey: ct.IssueKey})
		}
	}
	return out
}

// PaceEntry is one estimated issue's days-per-point figure on a given day.
type PaceEntry struct {
	Day time.Time
	PointPace
}

// DaysPerPointListing flattens the aggregate's per-point pace entries for one
// type, days ascending.
func DaysPerPointListing(agg Aggregate, t issue.Type) []PaceEntry {
	var out []PaceEntry
	for _, day := range agg.Days() {
		for _, pp := range agg[day].Metrics(t).DaysPerPoint {
			out = append(out, PaceEntry{Day: day, PointPace: pp})
		}
	}
	return out
}

// Outlier is an issue whose estimate exceeds the points threshold.
type Outlier struct {
	Day      time.Time
	Type     issue.Type
	Points   float64
	IssueKey string
}

// FindOutliers scans the raw records, not the aggregate, so individual issues
// surface even when their day sums differently.
func FindOutliers(records []issue.Record) []Outlier {
	return lo.FilterMap(records, func(r issue.Record, _ int) (Outlier, bool) {
		if r.Points <= PointsThreshold {
			return Outlier{}, false
		}
		return Outlier{Day: r.Resolved, Type: r.Type, Points: r.Points, IssueKey: r.Key}, true
	})
}
