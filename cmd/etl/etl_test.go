package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/google/go-cmp/cmp"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, [][]string{
		{"table", "rows"},
		{"São Paulo", "1"},
		{"Local", "12345"},
	})

	want := strings.Join([]string{
		"| table     | rows  |",
		"| --------- | ----- |",
		"| São Paulo | 1     |",
		"| Local     | 12345 |",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("writeTable() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTable_TruncatesLongCells(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, [][]string{{"error"}, {strings.Repeat("x", 200)}})

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if len([]rune(line)) > maxCellWidth+4 {
			t.Errorf("line too wide (%d runes): %q", len([]rune(line)), line)
		}
	}
}

func TestMemoryMonitor(t *testing.T) {
	m := NewMonitor()
	m.Start(time.Millisecond, logger.Discard())
	time.Sleep(20 * time.Millisecond)

	stats := m.Stop()
	if stats.PeakGoroutines < 1 {
		t.Errorf("PeakGoroutines = %d, want at least 1", stats.PeakGoroutines)
	}
}
