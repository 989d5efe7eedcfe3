package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/google/subcommands"
)

type checkCmd struct {
	baseCmd
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verify foreign keys and print table counts" }
func (*checkCmd) Usage() string {
	return `check [-config file] [-db path]:
  Run PRAGMA foreign_key_check and print the row count of every table.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	const component = "Check"

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

	exists, err := a.storage.Schema.Exists(ctx)
	if err != nil {
		a.appLogger.Error(component, "Failed to inspect schema: %v", err)
		return subcommands.ExitFailure
	}
	if !exists {
		a.appLogger.Warn(component, "Tables not found, run ingest first: db=%s", cfg.Store.Path)
		return subcommands.ExitFailure
	}

	counts, err := a.storage.Schema.Counts(ctx)
	if err != nil {
		a.appLogger.Error(component, "Failed to count rows: %v", err)
		return subcommands.ExitFailure
	}
	writeTable(os.Stdout, [][]string{
		{"table", "rows"},
		{store.TableLocal, fmt.Sprint(counts.Local)},
		{store.TablePartido, fmt.Sprint(counts.Partido)},
		{store.TableFornecedor, fmt.Sprint(counts.Fornecedor)},
		{store.TablePrestador, fmt.Sprint(counts.Prestador)},
		{store.TableDocumento, fmt.Sprint(counts.Documento)},
		{store.TableDespesa, fmt.Sprint(counts.Despesa)},
	})

	violations, err := a.storage.Schema.ForeignKeyCheck(ctx)
	if err != nil {
		a.appLogger.Error(component, "Foreign key check failed: %v", err)
		return subcommands.ExitFailure
	}
	if len(violations) == 0 {
		a.appLogger.Info(component, "Foreign key check passed")
		return subcommands.ExitSuccess
	}

	rows := [][]string{{"table", "rowid", "parent", "fkid"}}
	for _, v := range violations {
		rowid := "-"
		if v.RowID != nil {
			rowid = fmt.Sprint(*v.RowID)
		}
		rows = append(rows, []string{v.Table, rowid, v.Parent, fmt.Sprint(v.FKID)})
	}
	fmt.Println()
	writeTable(os.Stdout, rows)
	a.appLogger.Error(component, "Foreign key check found orphans: count=%d", len(violations))
	return subcommands.ExitFailure
}
