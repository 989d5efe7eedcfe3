package main

import (
	"flag"
	"os"

	"github.com/farxc/prestacao-contas/internal/campaign"
	"github.com/farxc/prestacao-contas/internal/config"
	"github.com/farxc/prestacao-contas/internal/db"
	"github.com/farxc/prestacao-contas/internal/env"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/farxc/prestacao-contas/internal/store"
)

func main() {
	const component = "Main"

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := env.Load(); err != nil {
		logger.New("error", "text", os.Stderr).Fatal(component, "Invalid .env file: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("error", "text", os.Stderr).Fatal(component, "Invalid configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	database, err := db.New(
		cfg.Store.Path,
		cfg.Store.BusyTimeoutMs,
		cfg.Store.MaxOpenConns,
		cfg.Store.MaxIdleConns,
		cfg.Store.MaxIdleTime)
	if err != nil {
		appLogger.Fatal(component, "Database connection failed: error=%v", err)
	}
	defer database.Close()
	appLogger.Info(component, "Database connection pool established: path=%s", cfg.Store.Path)

	storage := store.NewStorage(database)

	app := &application{
		config:    cfg,
		store:     storage,
		pipeline:  campaign.NewPipeline(storage, appLogger),
		appLogger: appLogger,
	}

	mux := app.mount()

	if err := app.run(mux); err != nil {
		appLogger.Fatal(component, "Server stopped: %v", err)
	}
}
