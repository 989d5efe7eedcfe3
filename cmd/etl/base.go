package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/farxc/prestacao-contas/internal/config"
	"github.com/farxc/prestacao-contas/internal/db"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/jmoiron/sqlx"
)

// baseCmd holds the flags every command shares.
type baseCmd struct {
	configPath string
	dbPath     string
}

func (b *baseCmd) setFlags(f *flag.FlagSet) {
	f.StringVar(&b.configPath, "config", "", "path to a YAML config file")
	f.StringVar(&b.dbPath, "db", "", "SQLite database path (overrides store.path)")
}

// app is what a command needs once configuration is resolved.
type app struct {
	cfg       *config.Config
	appLogger *logger.Logger
	database  *sqlx.DB
	storage   *store.Storage
}

// loadConfig reads the config file and applies the shared flag overrides.
func (b *baseCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(b.configPath)
	if err != nil {
		return nil, err
	}
	if b.dbPath != "" {
		cfg.Store.Path = b.dbPath
	}
	return cfg, nil
}

func openApp(cfg *config.Config) (*app, error) {
	const component = "Main"

	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	database, err := db.New(
		cfg.Store.Path,
		cfg.Store.BusyTimeoutMs,
		cfg.Store.MaxOpenConns,
		cfg.Store.MaxIdleConns,
		cfg.Store.MaxIdleTime)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	appLogger.Info(component, "Database connection pool established: path=%s", cfg.Store.Path)

	return &app{
		cfg:       cfg,
		appLogger: appLogger,
		database:  database,
		storage:   store.NewStorage(database),
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}
