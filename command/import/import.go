package cmdimport

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"jira-stats/connectors/config"
	ccsv "jira-stats/connectors/csv"
	"jira-stats/connectors/jira"
)

// Run executes the import subcommand: fetch the resolved issues of a Jira
// project and write them as an export-shaped CSV that calculate consumes.
//
// Usage:
//
//	jira-stats import [-end yyyy-mm-dd] [-out <file>] <project|shortcut>
//
// ENV: JIRA_TOKEN (PAT) or JIRA_USER/JIRA_PASSWORD. The Jira base URL and the
// project shortcuts come from the config file (CONFIG_PATH or ./config.yml).
func Run(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	endFlag := fs.String("end", "", "end date yyyy-mm-dd (default: today)")
	outFlag := fs.String("out", "", "output CSV path (default: data/<project>.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("import: expected exactly one project name or shortcut")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("import: config required for jira access: %w", err)
	}
	if cfg.Jira.URL == "" {
		log.Error().Str("reason", "missing jira.url").Msg("import.validation.error")
		return fmt.Errorf("import: jira.url missing from config")
	}

	token := os.Getenv("JIRA_TOKEN")
	user := os.Getenv("JIRA_USER")
	pass := os.Getenv("JIRA_PASSWORD")
	if token == "" && (user == "" || pass == "") {
		log.Error().Str("reason", "missing credentials").Msg("import.validation.error")
		return fmt.Errorf("import: set JIRA_TOKEN or JIRA_USER and JIRA_PASSWORD")
	}

	project := fs.Arg(0)
	if mapped, ok := cfg.Jira.Projects[project]; ok {
		log.Info().Str("shortcut", project).Str("project", mapped).Msg("import.shortcut")
		project = mapped
	}

	end := time.Now()
	if *endFlag != "" {
		end, err = time.Parse("2006-01-02", *endFlag)
		if err != nil {
			return fmt.Errorf("import: bad -end date: %w", err)
		}
	}

	out := *outFlag
	if out == "" {
		out = filepath.Join("data", strings.ReplaceAll(project, " ", "_")+".csv")
	}

	log.Info().Str("project", project).Time("end", end).Msg("import.start")
	ctx := context.Background()
	hc := jira.NewHTTPClient(ctx, token, user, pass, cfg.Jira.InsecureSkipVerify)
	client := jira.New(hc, cfg.Jira.URL, cfg.Jira.PointsField, log.Logger)

	rows, err := client.FetchRows(ctx, project, end)
	if err != nil {
		log.Error().Err(err).Str("project", project).Msg("import.fetch.error")
		return err
	}
	if err := ccsv.WriteExport(out, rows); err != nil {
		return err
	}
	log.Info().Int("issues", len(rows)-1).Str("out", out).Msg("import.done")
	return nil
}
