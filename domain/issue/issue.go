package issue

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the timestamp format used by Jira CSV exports and by the
// rows the import command produces.
const DateLayout = "02.01.06 15:04"

// Type is the closed set of issue types the reports know about.
type Type int

const (
	Bug Type = iota
	Task
	Story
)

// Types lists all types in report column order: bug, task, story.
var Types = [3]Type{Bug, Task, Story}

func (t Type) String() string {
	switch t {
	case Bug:
		return "bug"
	case Task:
		return "task"
	case Story:
		return "story"
	}
	return "unknown"
}

// ParseType maps a raw issue type cell to a Type. Matching is
// case-insensitive; anything outside bug/task/story is rejected.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bug":
		return Bug, nil
	case "task":
		return Task, nil
	case "story":
		return Story, nil
	}
	return 0, fmt.Errorf("unrecognized issue type %q", s)
}

// Record is one resolved issue as taken from an export row. Dates are
// truncated to midnight UTC; Points == 0 means the issue was not estimated.
type Record struct {
	Key        string
	Type       Type
	Resolved   time.Time
	BoardEntry time.Time
	Points     float64
}

// Estimated reports whether the issue carries a story-point estimate.
func (r Record) Estimated() bool { return r.Points > 0 }

// CycleDays is the inclusive day count between board entry and resolution.
// Board entries after the resolution date come straight from the tracker and
// are passed through unclamped.
func (r Record) CycleDays() int {
	return int(r.Resolved.Sub(r.BoardEntry).Hours()/24) + 1
}

// Columns holds the detected column index for each required export field.
type Columns struct {
	Key        int
	Type       int
	Points     int
	Resolved   int
	BoardEntry int
}

// ParseRecord normalizes one raw export row into a Record using the detected
// column positions. An unparsable date or unknown issue type yields a
// MalformedRecordError.
func ParseRecord(row []string, cols Columns) (Record, error) {
	typ, err := ParseType(row[cols.Type])
	if err != nil {
		return Record{}, &MalformedRecordError{Field: "Issue Type", Value: row[cols.Type], Err: err}
	}
	resolved, err := parseDay(row[cols.Resolved])
	if err != nil {
		return Record{}, &MalformedRecordError{Field: "Resolved", Value: row[cols.Resolved], Err: err}
	}
	board, err := parseDay(row[cols.BoardEntry])
	if err != nil {
		return Record{}, &MalformedRecordError{Field: "board enter date", Value: row[cols.BoardEntry], Err: err}
	}
	points, err := parsePoints(row[cols.Points])
	if err != nil {
		return Record{}, &MalformedRecordError{Field: "Custom field (Story Points)", Value: row[cols.Points], Err: err}
	}
	return Record{
		Key:        row[cols.Key],
		Type:       typ,
		Resolved:   resolved,
		BoardEntry: board,
		Points:     points,
	}, nil
}

// parseDay parses an export timestamp and drops the time of day.
func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return Midnight(t), nil
}

// Midnight truncates a timestamp to its calendar day in UTC. All day keys in
// the aggregate flow through here.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parsePoints reads the story points cell. Empty cells and literal zero mean
// the issue was not estimated.
func parsePoints(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if p < 0 {
		return 0, fmt.Errorf("negative story points %v", p)
	}
	return p, nil
}
