package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-stats/domain/issue"
)

func TestPointDistributionBucketsBySummedDailyPoints(t *testing.T) {
	// Three bugs totaling 5 points on one day contribute one occurrence at
	// key 5, not three.
	agg := Build([]issue.Record{
		rec("SCS-1", issue.Bug, 2, 1, 2),
		rec("SCS-2", issue.Bug, 2, 1, 2),
		rec("SCS-3", issue.Bug, 2, 1, 1),
		rec("SCS-4", issue.Story, 2, 1, 5),
		rec("SCS-5", issue.Story, 3, 1, 5),
	})
	dist := BuildPointDistribution(agg)

	require.Len(t, dist, 1)
	assert.Equal(t, [3]int{1, 0, 2}, dist[5])
}

func TestPointDistributionSkipsUnestimatedBuckets(t *testing.T) {
	agg := Build([]issue.Record{
		rec("SCS-1", issue.Task, 2, 1, 0),
		rec("SCS-2", issue.Task, 3, 1, 3),
	})
	dist := BuildPointDistribution(agg)
	require.Len(t, dist, 1)
	assert.Equal(t, [3]int{0, 1, 0}, dist[3])
}

func TestPointDistributionRowsAscending(t *testing.T) {
	agg := Build([]issue.Record{
		rec("SCS-1", issue.Story, 1, 1, 8),
		rec("SCS-2", issue.Story, 2, 1, 0.5),
		rec("SCS-3", issue.Story, 3, 1, 3),
		rec("SCS-4", issue.Bug, 4, 1, 3),
	})
	rows := BuildPointDistribution(agg).Rows()

	require.Len(t, rows, 3, "no duplicate point keys")
	prev := 0.0
	for _, r := range rows {
		assert.Greater(t, r.Points, prev, "strictly ascending")
		prev = r.Points
	}
	assert.Equal(t, []PointRow{
		{Points: 0.5, Counts: [3]int{0, 0, 1}},
		{Points: 3, Counts: [3]int{1, 0, 1}},
		{Points: 8, Counts: [3]int{0, 0, 1}},
	}, rows)
}

func TestCycleTimeDistributionStoryBlock(t *testing.T) {
	// One story with 8 points and a cycle time of 10 days yields block
	// "8 points" with the pair (10, 1).
	agg := Build([]issue.Record{rec("SCS-1", issue.Story, 10, 1, 8)})
	blocks := BuildCycleTimeDistribution(agg).Blocks()

	require.Len(t, blocks, 1)
	assert.Equal(t, 8.0, blocks[0].Points)
	assert.Equal(t, []CycleTimePair{{Days: 10, Count: 1}}, blocks[0].Pairs)
}

func TestCycleTimeDistributionIgnoresBugs(t *testing.T) {
	agg := Build([]issue.Record{
		rec("SCS-1", issue.Bug, 10, 1, 8),
		rec("SCS-2", issue.Task, 10, 6, 3),
		rec("SCS-3", issue.Task, 10, 6, 0),
	})
	dist := BuildCycleTimeDistribution(agg)

	require.Len(t, dist, 1, "bugs never enter the cycle-time distribution")
	// Both task cycle times count under the day's summed 3 points.
	assert.Equal(t, map[int]int{5: 2}, dist[3])
}

func TestCycleTimeListing(t *testing.T) {
	agg := Build([]issue.Record{
		rec("SCS-2", issue.Task, 5, 3, 0),
		rec("SCS-1", issue.Task, 2, 2, 1),
		rec("SCS-3", issue.Bug, 3, 1, 0),
	})
	entries := CycleTimeListing(agg, issue.Task)

	require.Len(t, entries, 2)
	assert.Equal(t, CycleTimeEntry{Day: day(2), Days: 1, IssueKey: "SCS-1"}, entries[0])
	assert.Equal(t, CycleTimeEntry{Day: day(5), Days: 3, IssueKey: "SCS-2"}, entries[1])
}

func TestDaysPerPointListing(t *testing.T) {
	agg := Build([]issue.Record{
		rec("SCS-1", issue.Story, 7, 1, 3),
		rec("SCS-2", issue.Story, 7, 7, 0),
	})
	entries := DaysPerPointListing(agg, issue.Story)

	require.Len(t, entries, 1, "unestimated issues have no pace entry")
	assert.Equal(t, PaceEntry{
		Day:       day(7),
		PointPace: PointPace{IssueKey: "SCS-1", Points: 3, Days: 7, PerPoint: 2.3},
	}, entries[0])
}

func TestFindOutliers(t *testing.T) {
	records := []issue.Record{
		rec("SCS-1", issue.Story, 2, 1, 5),
		rec("SCS-2", issue.Story, 3, 1, 8),
		rec("SCS-3", issue.Bug, 4, 1, 13),
		rec("SCS-4", issue.Task, 5, 1, 0),
	}
	outliers := FindOutliers(records)

	require.Len(t, outliers, 2, "threshold is exclusive")
	assert.Equal(t, Outlier{Day: day(3), Type: issue.Story, Points: 8, IssueKey: "SCS-2"}, outliers[0])
	assert.Equal(t, Outlier{Day: day(4), Type: issue.Bug, Points: 13, IssueKey: "SCS-3"}, outliers[1])
}
