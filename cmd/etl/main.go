package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/farxc/prestacao-contas/internal/env"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/google/subcommands"
)

func main() {
	if err := env.Load(); err != nil {
		logger.New("error", "text", os.Stderr).Fatal("Main", "Invalid .env file: %v", err)
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&ingestCmd{}, "")
	subcommands.Register(&historyCmd{}, "")
	subcommands.Register(&checkCmd{}, "")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}
