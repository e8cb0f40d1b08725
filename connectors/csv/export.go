package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"jira-stats/domain/issue"
)

// Required export column names. Lookup is by exact name so a reordered Jira
// report keeps working and a renamed one fails loudly.
const (
	ColIssueKey   = "Issue key"
	ColIssueType  = "Issue Type"
	ColPoints     = "Custom field (Story Points)"
	ColResolved   = "Resolved"
	ColBoardEnter = "board enter date"
)

// ReadExport loads a Jira export CSV. The first row is the header; exports
// are small so everything is read at once.
func ReadExport(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// WriteExport writes export-shaped rows (header first) to path, creating the
// directory if needed. The import command uses it to persist fetched issues.
func WriteExport(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// DetectColumns locates the required columns in the export header.
func DetectColumns(header []string) (issue.Columns, error) {
	var cols issue.Columns
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{ColIssueKey, &cols.Key},
		{ColIssueType, &cols.Type},
		{ColPoints, &cols.Points},
		{ColResolved, &cols.Resolved},
		{ColBoardEnter, &cols.BoardEntry},
	} {
		idx := indexOf(header, c.name)
		if idx < 0 {
			return issue.Columns{}, &issue.MissingColumnError{Column: c.name}
		}
		*c.dst = idx
	}
	return cols, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
