package web

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"jira-stats/domain/issue"
)

// Run starts a small Echo web server exposing the generated report CSVs as
// JSON, so a dashboard can plot them without parsing files.
//
// Usage:
//
//	jira-stats web [-addr :8080] [-data ./data] [-base <report base name>]
//
// Endpoints:
//
//	GET /api/statistics              -> <base>_statistics.csv
//	GET /api/distribution            -> <base>_distribution.csv
//	GET /api/outliers                -> <base>_biggies.csv
//	GET /api/cycle_times/<type>      -> <base>_boarddays_<type>.csv
//	GET /api/days_per_point/<type>   -> <base>_days_per_point_<type>.csv
//
// Missing files answer 404.
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	dataDir := fs.String("data", "./data", "directory containing the report CSV files")
	base := fs.String("base", "report", "base name the report files were written with")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true

	// Helper to register a GET endpoint serving a specific CSV file.
	// Tables carry their header in the first row; the listings are headless
	// and get their column names supplied here.
	serveCSV := func(route string, filename string, headers []string) {
		e.GET(route, func(c echo.Context) error {
			path := filepath.Join(*dataDir, filename)
			rows, err := readCSV(path, headers)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return c.JSON(http.StatusNotFound, map[string]any{
						"error":   "file not found",
						"path":    path,
						"message": "CSV file is missing",
					})
				}
				return c.JSON(http.StatusInternalServerError, map[string]any{
					"error":   err.Error(),
					"path":    path,
					"message": "failed to read CSV",
				})
			}
			return c.JSON(http.StatusOK, rows)
		})
	}

	serveCSV("/api/statistics", *base+"_statistics.csv", nil)
	serveCSV("/api/distribution", *base+"_distribution.csv", nil)
	serveCSV("/api/outliers", *base+"_biggies.csv", nil)
	for _, typ := range issue.Types {
		serveCSV("/api/cycle_times/"+typ.String(),
			fmt.Sprintf("%s_boarddays_%s.csv", *base, typ),
			[]string{"date", "days", "issue_key"})
		serveCSV("/api/days_per_point/"+typ.String(),
			fmt.Sprintf("%s_days_per_point_%s.csv", *base, typ),
			[]string{"date", "days_per_point", "points", "days", "issue_key"})
	}

	return e.Start(*addr)
}

// readCSV loads a CSV file and returns a slice of objects keyed by headers.
// When headers is nil the first row is taken as the header. Values are kept
// as strings to avoid lossy or incorrect type coercion.
func readCSV(path string, headers []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Read all rows; the reports are expected to be small.
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if headers == nil {
		if len(records) == 0 {
			return []map[string]string{}, nil
		}
		headers = records[0]
		records = records[1:]
	}

	res := make([]map[string]string, 0, len(records))
	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		obj := make(map[string]string, len(headers))
		for j := 0; j < len(headers) && j < len(row); j++ {
			obj[headers[j]] = row[j]
		}
		res = append(res, obj)
	}
	return res, nil
}
