// Package jira is a thin connector over the Jira REST search API. It pages
// through the resolved issues of a project, digs the board-entry date out of
// each issue's changelog and hands the result back as export-shaped rows so
// the rest of the pipeline cannot tell online data from a CSV export.
package jira

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"jira-stats/domain/issue"
)

const (
	searchPath = "/rest/api/2/search"
	// MaxDays caps the query range to a little more than 1 1/2 years.
	// A longer interval does not give more insight.
	MaxDays      = 555
	queryLayout  = "2006-01-02"
	changeLayout = "2006-01-02T15:04:05"
)

// ExportHeader mirrors the column layout of a Jira CSV export.
var ExportHeader = []string{
	"Issue key", "Issue id", "Issue Type",
	"Custom field (Story Points)", "Resolved", "board enter date",
}

// boardStatuses are the workflow statuses that mark an issue as being on the
// board, in lookup order. Histories are inconsistent across the Scrum
// workflows, so the first registered status of this list wins.
var boardStatuses = []string{
	"initiation", "refinement", "in progress", "review", "approved", "done", "operation",
}

// Client pages Jira search results. Use New to construct it.
type Client struct {
	c           *http.Client
	baseURL     string
	pointsField string
	log         zerolog.Logger
}

func New(c *http.Client, baseURL, pointsField string, log zerolog.Logger) *Client {
	if c == nil {
		c = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{c: c, baseURL: baseURL, pointsField: pointsField, log: log}
}

// NewHTTPClient builds the authenticated transport: a bearer token (Jira PAT)
// via oauth2 when set, basic auth otherwise.
func NewHTTPClient(ctx context.Context, token, user, pass string, insecure bool) *http.Client {
	base := &http.Client{Timeout: 30 * time.Second}
	if insecure {
		base.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		c := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		c.Timeout = base.Timeout
		return c
	}
	return &http.Client{Timeout: base.Timeout, Transport: &basicAuth{user: user, pass: pass, next: transportOf(base)}}
}

type basicAuth struct {
	user, pass string
	next       http.RoundTripper
}

func (b *basicAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(b.user, b.pass)
	return b.next.RoundTrip(r)
}

func transportOf(c *http.Client) http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	return http.DefaultTransport
}

// JQL builds the resolved-issues query for a project ending at endDate. The
// end day itself is included by querying up to the next day 00:00, otherwise
// Jira would not find anything from the specified end day.
func JQL(project string, endDate time.Time) string {
	actualEnd := endDate.AddDate(0, 0, 1)
	start := endDate.AddDate(0, 0, -(MaxDays - 1))
	return fmt.Sprintf(
		`project in (%q) AND issueType in (Story, Bug, Task) AND resolved < %s AND resolved >= %s AND resolution = Done ORDER BY resolved ASC`,
		project, actualEnd.Format(queryLayout), start.Format(queryLayout))
}

type searchResponse struct {
	StartAt int        `json:"startAt"`
	Total   int        `json:"total"`
	Issues  []apiIssue `json:"issues"`
}

type apiIssue struct {
	Key       string                     `json:"key"`
	ID        string                     `json:"id"`
	Fields    map[string]json.RawMessage `json:"fields"`
	Changelog struct {
		Histories []history `json:"histories"`
	} `json:"changelog"`
}

type history struct {
	Created string `json:"created"`
	Items   []struct {
		Field    string `json:"field"`
		ToString string `json:"toString"`
	} `json:"items"`
}

// FetchRows pages through the project's resolved issues and returns them as
// export-shaped rows, header first.
func (c *Client) FetchRows(ctx context.Context, project string, endDate time.Time) ([][]string, error) {
	query := JQL(project, endDate)
	c.log.Info().Str("project", project).Str("jql", query).Msg("jira.search.start")

	rows := [][]string{ExportHeader}
	start := 0
	for {
		page, err := c.search(ctx, query, start)
		if err != nil {
			return nil, err
		}
		if len(page.Issues) == 0 {
			break
		}
		for _, is := range page.Issues {
			row, err := c.issueRow(is)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		start += len(page.Issues)
		c.log.Debug().Int("fetched", start).Int("total", page.Total).Msg("jira.search.page")
	}
	c.log.Info().Int("issues", len(rows)-1).Msg("jira.search.done")
	return rows, nil
}

func (c *Client) search(ctx context.Context, query string, startAt int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("jql", query)
	q.Set("fields", c.pointsField+",issuetype,resolutiondate")
	q.Set("expand", "changelog")
	q.Set("startAt", strconv.Itoa(startAt))
	u := c.baseURL + searchPath + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.c.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("jira: search returned %d", resp.StatusCode)
			c.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("jira.search.retry")
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("jira: search returned %d: %s", resp.StatusCode, body)
		}
		var sr searchResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return nil, err
		}
		return &sr, nil
	}
	return nil, lastErr
}

// issueRow transforms one API issue into an export row.
func (c *Client) issueRow(is apiIssue) ([]string, error) {
	typ, err := fieldString(is.Fields, "issuetype", "name")
	if err != nil {
		return nil, fmt.Errorf("jira: issue %s: %w", is.Key, err)
	}
	resolved, err := stringField(is.Fields, "resolutiondate")
	if err != nil {
		return nil, fmt.Errorf("jira: issue %s: %w", is.Key, err)
	}
	resolvedCell, err := exportDate(resolved)
	if err != nil {
		return nil, fmt.Errorf("jira: issue %s: %w", is.Key, err)
	}
	boardRaw, err := boardEnterDate(is)
	if err != nil {
		return nil, err
	}
	boardCell, err := exportDate(boardRaw)
	if err != nil {
		return nil, fmt.Errorf("jira: issue %s: %w", is.Key, err)
	}
	return []string{
		is.Key, is.ID, typ, pointsCell(is.Fields[c.pointsField]), resolvedCell, boardCell,
	}, nil
}

// boardEnterDate finds the date the issue entered the board. The status
// changes in the history are incomplete more often than not, so the first
// board status with a registered change wins.
func boardEnterDate(is apiIssue) (string, error) {
	changes := map[string]string{}
	for _, h := range is.Changelog.Histories {
		for _, item := range h.Items {
			if item.Field == "status" {
				changes[strings.ToLower(item.ToString)] = h.Created
			}
		}
	}
	for _, status := range boardStatuses {
		if created, ok := changes[status]; ok {
			return created, nil
		}
	}
	return "", fmt.Errorf("jira: incomplete history in issue %s", is.Key)
}

// exportDate converts a Jira ISO timestamp, e.g. 2021-01-04T11:13:36.000+0100,
// into the export date format.
func exportDate(s string) (string, error) {
	if len(s) < len(changeLayout) {
		return "", fmt.Errorf("unexpected date %q", s)
	}
	t, err := time.Parse(changeLayout, s[:len(changeLayout)])
	if err != nil {
		return "", err
	}
	return t.Format(issue.DateLayout), nil
}

// pointsCell renders the story point field. Unset estimates become 0, which
// the normalizer treats as unestimated.
func pointsCell(raw json.RawMessage) string {
	var p float64
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return "0"
	}
	return strconv.Itoa(int(p))
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func fieldString(fields map[string]json.RawMessage, name, sub string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	return stringField(obj, sub)
}

