package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	cmdcalculate "jira-stats/command/calculate"
	cmdimport "jira-stats/command/import"
	cmdweb "jira-stats/command/web"
)

// Workflow analytics over resolved Jira issues.
// Usage:
//   jira-stats import [-end yyyy-mm-dd] [-out <file>] <project|shortcut>
//   jira-stats calculate [-out <base>] <export.csv>
//   jira-stats web [-addr :8080] [-data ./data] [-base <name>]
// Notes:
// - calculate expects a Jira issue export CSV carrying the columns
//   "Issue key", "Issue Type", "Custom field (Story Points)", "Resolved"
//   and "board enter date"; the column positions are detected automatically.
// - import produces a CSV of exactly that shape from the Jira REST API.

const usage = `usage: jira-stats import [-end yyyy-mm-dd] [-out <file>] <project|shortcut> | calculate [-out <base>] <export.csv> | web [-addr :8080] [-data ./data] [-base <name>]
ENV: JIRA_TOKEN or JIRA_USER/JIRA_PASSWORD for import; set CONFIG_PATH to point to a YAML config file (default ./config.yml)`

func main() {
	// .env is optional; real env vars win.
	_ = godotenv.Load()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	args := os.Args
	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "import":
			if err := cmdimport.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "calculate":
			if err := cmdcalculate.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, usage)
	os.Exit(2)
}
