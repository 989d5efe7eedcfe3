package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth keeps long error messages from stretching a column.
const maxCellWidth = 60

// writeTable prints rows as a markdown table; the first row is the header.
// Widths use display width so accented names line up.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	cells := make([][]string, len(rows))
	colWidths := make([]int, colCount)
	for r, row := range rows {
		cells[r] = make([]string, colCount)
		for i := 0; i < colCount; i++ {
			content := ""
			if i < len(row) {
				content = runewidth.Truncate(row[i], maxCellWidth, "…")
			}
			cells[r][i] = content
			if width := runewidth.StringWidth(content); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	line := func(row []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for i, content := range row {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(content, colWidths[i]))
			sb.WriteString(" |")
		}
		return sb.String()
	}

	fmt.Fprintln(w, line(cells[0]))

	sep := make([]string, colCount)
	for i := range sep {
		sep[i] = strings.Repeat("-", colWidths[i])
	}
	fmt.Fprintln(w, line(sep))

	for _, row := range cells[1:] {
		fmt.Fprintln(w, line(row))
	}
}
