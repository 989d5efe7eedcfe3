// Package config loads the ingestion and API settings from an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/farxc/prestacao-contas/internal/env"
	"gopkg.in/yaml.v3"
)

// Ingestion modes.
const (
	ModeForce = "force"
	ModeReuse = "reuse"
)

// Amount coercion policies.
const (
	AmountPolicyFail = "fail"
	AmountPolicySkip = "skip"
)

// Configuration validation errors.
var (
	ErrMissingSource       = errors.New("source.path is required")
	ErrMissingStorePath    = errors.New("store.path is required")
	ErrInvalidMode         = errors.New("ingest.mode must be 'force' or 'reuse'")
	ErrInvalidAmountPolicy = errors.New("ingest.amount_policy must be 'fail' or 'skip'")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidConns        = errors.New("store.max_open_conns must be at least 1")
	ErrInvalidTimeout      = errors.New("source.download_timeout must be positive")
)

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Store   StoreConfig   `yaml:"store"`
	Ingest  IngestConfig  `yaml:"ingest"`
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig locates the CSV extract. URL is optional; when set the file is
// downloaded to Path before parsing.
type SourceConfig struct {
	Path            string        `yaml:"path"`
	URL             string        `yaml:"url"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

type StoreConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
	MaxIdleConns  int    `yaml:"max_idle_conns"`
	MaxIdleTime   string `yaml:"max_idle_time"`
}

type IngestConfig struct {
	Mode         string `yaml:"mode"`
	AmountPolicy string `yaml:"amount_policy"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Path:            "despesa_anual_2024_BRASIL.csv",
			DownloadTimeout: 10 * time.Minute,
		},
		Store: StoreConfig{
			Path:          "database.db",
			BusyTimeoutMs: 5000,
			MaxOpenConns:  4,
			MaxIdleConns:  4,
			MaxIdleTime:   "15m",
		},
		Ingest: IngestConfig{
			Mode:         ModeForce,
			AmountPolicy: AmountPolicyFail,
		},
		API: APIConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Source.Path = env.GetString("SOURCE_PATH", c.Source.Path)
	c.Source.URL = env.GetString("SOURCE_URL", c.Source.URL)
	c.Source.DownloadTimeout = env.GetDuration("SOURCE_DOWNLOAD_TIMEOUT", c.Source.DownloadTimeout)

	c.Store.Path = env.GetString("DB_PATH", c.Store.Path)
	c.Store.BusyTimeoutMs = env.GetInt("DB_BUSY_TIMEOUT_MS", c.Store.BusyTimeoutMs)
	c.Store.MaxOpenConns = env.GetInt("DB_MAX_OPEN_CONNS", c.Store.MaxOpenConns)
	c.Store.MaxIdleConns = env.GetInt("DB_MAX_IDLE_CONNS", c.Store.MaxIdleConns)
	c.Store.MaxIdleTime = env.GetString("DB_MAX_IDLE_TIME", c.Store.MaxIdleTime)

	c.Ingest.Mode = env.GetString("INGEST_MODE", c.Ingest.Mode)
	c.Ingest.AmountPolicy = env.GetString("INGEST_AMOUNT_POLICY", c.Ingest.AmountPolicy)

	c.API.Addr = env.GetString("ADDR", c.API.Addr)

	c.Logging.Level = env.GetString("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = env.GetString("LOG_FORMAT", c.Logging.Format)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return ErrMissingSource
	}
	if c.Source.DownloadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Store.Path == "" {
		return ErrMissingStorePath
	}
	if c.Store.MaxOpenConns < 1 {
		return ErrInvalidConns
	}
	if _, err := time.ParseDuration(c.Store.MaxIdleTime); err != nil {
		return fmt.Errorf("store.max_idle_time: %w", err)
	}

	switch c.Ingest.Mode {
	case ModeForce, ModeReuse:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidMode, c.Ingest.Mode)
	}

	switch c.Ingest.AmountPolicy {
	case AmountPolicyFail, AmountPolicySkip:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidAmountPolicy, c.Ingest.AmountPolicy)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}
