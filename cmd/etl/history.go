package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
)

type historyCmd struct {
	baseCmd
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recent ingestion runs" }
func (*historyCmd) Usage() string {
	return `history [-config file] [-db path] [-limit n]:
  Print the run ledger, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.IntVar(&c.limit, "limit", 20, "number of runs to show")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.storage.Schema.EnsureLedger(ctx); err != nil {
		a.appLogger.Error("History", "Failed to open run ledger: %v", err)
		return subcommands.ExitFailure
	}

	runs, err := a.storage.IngestionHistory.GetLatest(ctx, c.limit)
	if err != nil {
		a.appLogger.Error("History", "Failed to read run ledger: %v", err)
		return subcommands.ExitFailure
	}

	rows := [][]string{{"id", "started", "status", "mode", "trigger", "rows", "malformed", "skipped", "despesas", "failed stage", "error"}}
	for _, r := range runs {
		stage, msg := "", ""
		if r.FailedStage != nil {
			stage = *r.FailedStage
		}
		if r.Error != nil {
			msg = *r.Error
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.Mode,
			r.TriggerType,
			fmt.Sprint(r.RowsRead),
			fmt.Sprint(r.MalformedRows),
			fmt.Sprint(r.SkippedRows),
			fmt.Sprint(r.Despesa),
			stage,
			msg,
		})
	}

	writeTable(os.Stdout, rows)
	return subcommands.ExitSuccess
}
