package web

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSVWithHeaderRow(t *testing.T) {
	path := writeFile(t, "dist.csv", "points,bug,task,story\n3,1,0,2\n8,0,0,1\n")
	rows, err := readCSV(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []map[string]string{
		{"points": "3", "bug": "1", "task": "0", "story": "2"},
		{"points": "8", "bug": "0", "task": "0", "story": "1"},
	}, rows)
}

func TestReadCSVHeadlessListing(t *testing.T) {
	path := writeFile(t, "boarddays.csv", "04.01.2021,10,SCS-1\n")
	rows, err := readCSV(path, []string{"date", "days", "issue_key"})
	require.NoError(t, err)

	assert.Equal(t, []map[string]string{
		{"date": "04.01.2021", "days": "10", "issue_key": "SCS-1"},
	}, rows)
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := readCSV(filepath.Join(t.TempDir(), "nope.csv"), nil)
	assert.True(t, os.IsNotExist(err))
}
