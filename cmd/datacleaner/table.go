package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// maxCellWidth caps a preview column; longer cells are cut with "…".
const maxCellWidth = 32

// renderTable writes rows as an aligned text table. Widths are measured in
// terminal cells, so accented and wide characters line up.
func renderTable(w io.Writer, fields []string, rows []core.Row) error {
	cells := make([][]string, len(rows))
	widths := make([]int, len(fields))
	for i, f := range fields {
		widths[i] = runewidth.StringWidth(f)
	}

	for r, row := range rows {
		cells[r] = make([]string, len(fields))
		for i, f := range fields {
			s := strings.Join(strings.Fields(core.ValueString(row[f])), " ")
			s = runewidth.Truncate(s, maxCellWidth, "…")
			cells[r][i] = s
			widths[i] = max(widths[i], runewidth.StringWidth(s))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}

	line := func(values []string) error {
		padded := make([]string, len(values))
		for i, v := range values {
			padded[i] = runewidth.FillRight(runewidth.Truncate(v, widths[i], "…"), widths[i])
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, " | "), " "))
		return err
	}

	if err := line(fields); err != nil {
		return err
	}
	sep := make([]string, len(fields))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.Join(sep, "-+-")); err != nil {
		return err
	}
	for _, c := range cells {
		if err := line(c); err != nil {
			return err
		}
	}
	return nil
}
