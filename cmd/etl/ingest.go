package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/farxc/prestacao-contas/internal/campaign"
	"github.com/farxc/prestacao-contas/internal/campaign/downloader"
	"github.com/farxc/prestacao-contas/internal/campaign/normalize"
	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/google/subcommands"
)

type ingestCmd struct {
	baseCmd
	source       string
	url          string
	mode         string
	amountPolicy string
	trigger      string
	download     bool
	monitor      bool
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "load the expense extract into the database" }
func (*ingestCmd) Usage() string {
	return `ingest [-config file] [-source path] [-db path] [-mode force|reuse] [-amount-policy fail|skip] [-download] [-monitor]:
  Parse, normalize and load the campaign expense CSV.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.source, "source", "", "CSV extract path (overrides source.path)")
	f.StringVar(&c.url, "url", "", "download URL (overrides source.url)")
	f.StringVar(&c.mode, "mode", "", "force rebuilds the tables, reuse keeps a previous successful load")
	f.StringVar(&c.amountPolicy, "amount-policy", "", "fail aborts on an unparsable amount, skip drops the record")
	f.StringVar(&c.trigger, "trigger", store.TriggerTypeManual, "trigger source: manual, scheduled")
	f.BoolVar(&c.download, "download", false, "download the extract even when the file exists")
	f.BoolVar(&c.monitor, "monitor", false, "log goroutine and memory peaks during the run")
}

func (c *ingestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	const component = "Main"

	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if c.source != "" {
		cfg.Source.Path = c.source
	}
	if c.url != "" {
		cfg.Source.URL = c.url
	}
	if c.mode != "" {
		cfg.Ingest.Mode = c.mode
	}
	if c.amountPolicy != "" {
		cfg.Ingest.AmountPolicy = c.amountPolicy
	}
	if c.download && cfg.Source.URL == "" {
		cfg.Source.URL = downloader.DefaultSourceURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var monitor *MemoryMonitor
	if c.monitor {
		monitor = NewMonitor()
		monitor.Start(400*time.Millisecond, a.appLogger)
	}

	pipeline := campaign.NewPipeline(a.storage, a.appLogger)
	report, err := pipeline.Run(ctx, campaign.Options{
		SourcePath:      cfg.Source.Path,
		SourceURL:       cfg.Source.URL,
		Download:        c.download,
		DownloadTimeout: cfg.Source.DownloadTimeout,
		Mode:            cfg.Ingest.Mode,
		AmountPolicy:    normalize.AmountPolicy(cfg.Ingest.AmountPolicy),
		Trigger:         c.trigger,
	})

	if monitor != nil {
		stats := monitor.Stop()
		a.appLogger.Info("Monitor", "Peak usage: goroutines=%d memoryMB=%d", stats.PeakGoroutines, stats.PeakMemoryMB)
	}

	if err != nil {
		a.appLogger.Error(component, "Ingestion failed: %v", err)
		return subcommands.ExitFailure
	}

	if report.Skipped {
		a.appLogger.Info(component, "Ingestion skipped, tables reused: id=%s", report.RunID)
		return subcommands.ExitSuccess
	}

	a.appLogger.Info(component, "Application completed successfully: id=%s rows=%d malformed=%d skipped=%d duration=%.2f seconds",
		report.RunID, report.RowsRead, report.MalformedRows, report.SkippedRows, report.Duration.Seconds())
	return subcommands.ExitSuccess
}
