// Package csvio reads uploaded CSV files into pipeline sources and writes
// cleaned tables back out as delimited text.
package csvio

// reader.go provides the streaming wrappers applied to every upload before
// it reaches encoding/csv:
//
//   - decoding: Windows-1252 to UTF-8, or UTF-8 with the BOM stripped and
//     ill-formed sequences replaced by U+FFFD
//   - CountingReader: tracks raw bytes read and enforces the size limit
//
// Use NewReader to apply both in the correct order.

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrTooLarge is returned once a reader passes its byte limit.
var ErrTooLarge = errors.New("file too large")

// Encoding names the character set of an uploaded file.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
)

// ParseEncoding accepts the usual spellings of the supported encodings.
// The empty string means UTF-8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "windows-1252", "cp1252", "latin1", "latin-1", "iso-8859-1":
		return EncodingWindows1252, nil
	default:
		return "", fmt.Errorf("encoding error: unsupported encoding %q", s)
	}
}

func (e Encoding) decoder() transform.Transformer {
	if e == EncodingWindows1252 {
		return charmap.Windows1252.NewDecoder()
	}
	// Strips a leading BOM and replaces ill-formed bytes with U+FFFD.
	return unicode.UTF8BOM.NewDecoder()
}

// CountingReader wraps an io.Reader to track bytes read.
// When Limit is positive, reading past it fails with ErrTooLarge.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64 // 0 disables the check
}

// NewCountingReader creates a counting reader with an optional limit.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{
		reader: r,
		Limit:  limit,
	}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.Limit)
	}
	return n, err
}

// NewReader wraps r with byte counting and character decoding.
//
// Counting sits below decoding so the limit applies to the raw upload size.
// The returned CountingReader can be inspected after the decoded stream is
// consumed.
func NewReader(r io.Reader, enc Encoding, limit int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, limit)
	return transform.NewReader(counter, enc.decoder()), counter
}
