package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var slogLevels = map[LogLevel]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// New creates a logger writing to w. format is "text" or "json".
func New(level, format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}

	// The slog handler accepts everything; filtering happens on MinLevel so
	// SetLogLevel takes effect immediately.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		MinLevel: ParseLevel(level),
		handler:  slog.New(h),
	}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return New("error", "text", io.Discard)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a LogLevel.
// Unknown values map to LevelInfo.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.MinLevel = level
}

func (l *Logger) log(level LogLevel, component, message string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.MinLevel {
		return
	}
	if l.handler == nil {
		l.handler = slog.Default()
	}

	formattedMsg := fmt.Sprintf(message, args...)

	if component != "" {
		l.handler.Log(context.Background(), slogLevels[level], formattedMsg, "component", component)
	} else {
		l.handler.Log(context.Background(), slogLevels[level], formattedMsg)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...interface{}) {
	l.log(LevelDebug, component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...interface{}) {
	l.log(LevelInfo, component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...interface{}) {
	l.log(LevelWarn, component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
	os.Exit(1)
}
