package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// sniffBytes is how much of the file is inspected to guess the delimiter.
const sniffBytes = 64 * 1024

// candidateDelimiters are tried in order; ties go to the earlier one.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// ErrEmptyFile is returned when a file has no header line.
var ErrEmptyFile = errors.New("empty file")

// Options controls Parse.
type Options struct {
	Encoding  Encoding
	Delimiter rune  // 0 guesses from the header line
	MaxBytes  int64 // 0 means unlimited
	// Strict rejects rows whose field count differs from the header.
	Strict bool
}

// Table is a parsed CSV file.
type Table struct {
	Headers   []string
	Rows      []core.Row
	Delimiter rune
	BytesRead int64
}

// Parse reads a CSV file whose first non-blank line is the header.
//
// Header cells are trimmed and duplicates are renamed with _1, _2, ...
// suffixes. Blank lines are skipped. Each row maps header to cell text; a row
// shorter than the header leaves the trailing headers absent and cells past
// the last header are dropped, unless opts.Strict is set.
func Parse(r io.Reader, opts Options) (*Table, error) {
	decoded, counter := NewReader(r, opts.Encoding, opts.MaxBytes)
	br := bufio.NewReaderSize(decoded, sniffBytes)

	delim := opts.Delimiter
	if delim == 0 {
		head, err := br.Peek(sniffBytes)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, wrapReadErr(err)
		}
		delim = SniffDelimiter(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var headers []string
	var rows []core.Row

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapReadErr(err)
		}
		if isBlankRecord(record) {
			continue
		}

		if headers == nil {
			headers = DedupeHeaders(record)
			continue
		}

		if opts.Strict && len(record) != len(headers) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("invalid csv: line %d has %d fields, want %d", line, len(record), len(headers))
		}

		row := make(core.Row, len(headers))
		for i, cell := range record {
			if i >= len(headers) {
				break
			}
			row[headers[i]] = cell
		}
		rows = append(rows, row)
	}

	if headers == nil {
		return nil, ErrEmptyFile
	}

	return &Table{
		Headers:   headers,
		Rows:      rows,
		Delimiter: delim,
		BytesRead: counter.BytesRead,
	}, nil
}

func wrapReadErr(err error) error {
	if errors.Is(err, ErrTooLarge) {
		return err
	}
	return fmt.Errorf("invalid csv: %w", err)
}

// SniffDelimiter guesses the delimiter from the first non-blank line of head
// by counting candidates outside double quotes. It falls back to ','.
func SniffDelimiter(head []byte) rune {
	line := firstLine(head)

	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

func firstLine(data []byte) []byte {
	for len(data) > 0 {
		line := data
		rest := []byte(nil)
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, rest = data[:i], data[i+1:]
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return line
		}
		data = rest
	}
	return nil
}

// DedupeHeaders trims header cells and renames repeats as name_1, name_2, ...
// skipping any suffix that collides with another header.
func DedupeHeaders(record []string) []string {
	taken := make(map[string]bool, len(record))
	for _, h := range record {
		taken[strings.TrimSpace(h)] = true
	}

	out := make([]string, len(record))
	used := make(map[string]bool, len(record))
	next := make(map[string]int)

	for i, raw := range record {
		h := strings.TrimSpace(raw)
		if !used[h] {
			used[h] = true
			out[i] = h
			continue
		}
		for {
			next[h]++
			candidate := h + "_" + strconv.Itoa(next[h])
			if !used[candidate] && !taken[candidate] {
				used[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// isBlankRecord matches a line holding nothing but white space.
func isBlankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}
