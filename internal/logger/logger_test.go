package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_FiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "text", &buf)

	l.Info("Reader", "should not appear")
	l.Warn("Reader", "skipped %d lines", 3)

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "skipped 3 lines") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "component=Reader") {
		t.Errorf("component attribute missing: %q", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", "json", &buf)

	l.Debug("Loader", "inserted %d rows", 10)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "inserted 10 rows" {
		t.Errorf("msg = %v, want %q", entry["msg"], "inserted 10 rows")
	}
	if entry["component"] != "Loader" {
		t.Errorf("component = %v, want %q", entry["component"], "Loader")
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level = %v, want DEBUG", entry["level"])
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("error", "text", &buf)

	l.Info("", "hidden")
	l.SetLogLevel(LevelDebug)
	l.Info("", "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Errorf("unexpected output after SetLogLevel: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
