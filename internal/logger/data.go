package logger

import (
	"log/slog"
	"sync"
)

// Logger provides leveled logging tagged with the emitting component

type Logger struct {
	MinLevel LogLevel
	mu       sync.Mutex
	handler  *slog.Logger
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)
