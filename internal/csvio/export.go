package csvio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// DefaultExportName is the file name offered for downloads.
const DefaultExportName = "datacleaner_resultado_limpio.csv"

// ExportOptions controls Export.
type ExportOptions struct {
	Delimiter rune   // default ','
	Newline   string // default "\r\n"
}

// ParseDelimiter reads a delimiter given as a single character or as one of
// the names "comma", "semicolon", "tab", "pipe". The empty string means ','.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || !validDelim(r) {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func validDelim(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}

// Export writes fields as a header line followed by one line per row, in
// fields order. Every cell is double-quoted with embedded quotes doubled, so
// any value round-trips regardless of delimiter or line breaks. Absent and
// nil values are written as empty cells.
func Export(w io.Writer, fields []string, rows []core.Row, opts ExportOptions) error {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	if !validDelim(delim) {
		return fmt.Errorf("invalid delimiter %q", delim)
	}
	newline := opts.Newline
	if newline == "" {
		newline = "\r\n"
	}

	bw := bufio.NewWriter(w)

	writeLine := func(cell func(i int) string) {
		for i := range fields {
			if i > 0 {
				bw.WriteRune(delim)
			}
			writeQuoted(bw, cell(i))
		}
		bw.WriteString(newline)
	}

	writeLine(func(i int) string { return fields[i] })
	for _, row := range rows {
		writeLine(func(i int) string { return core.ValueString(row[fields[i]]) })
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeQuoted(bw *bufio.Writer, s string) {
	bw.WriteByte('"')
	for {
		i := strings.IndexByte(s, '"')
		if i < 0 {
			break
		}
		bw.WriteString(s[:i+1])
		bw.WriteByte('"')
		s = s[i+1:]
	}
	bw.WriteString(s)
	bw.WriteByte('"')
}
