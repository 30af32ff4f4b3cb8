package core

// text.go holds the text primitives shared by the rule dispatcher:
// value stringification, whitespace handling, case mapping and accent removal.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics is the Combining Diacritical Marks block (U+0300-U+036F).
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// ValueString converts a row value to text. nil becomes the empty string.
func ValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// isSpace matches Unicode white space plus the zero width no-break space,
// which spreadsheet exports leave behind as a stray BOM.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Trim removes leading and trailing white space.
func Trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// CollapseWhitespace replaces every run of white space with a single ASCII space.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Upper applies full Unicode upper-case mapping (ß becomes SS).
func Upper(s string) string {
	// Casers are stateful, so each call gets its own.
	return cases.Upper(language.Und).String(s)
}

// Lower applies full Unicode lower-case mapping.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// TitleCase upper-cases the first letter or digit of every white-space
// delimited word and lower-cases the rest of the word. Punctuation before
// that letter and the separators are kept as-is; a word with no letter or
// digit is left unchanged.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	wordStart := -1
	flush := func(end int) {
		if wordStart < 0 {
			return
		}
		word := s[wordStart:end]
		wordStart = -1

		lead := strings.IndexFunc(word, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		})
		if lead < 0 {
			b.WriteString(word)
			return
		}
		r, size := utf8.DecodeRuneInString(word[lead:])
		b.WriteString(word[:lead])
		b.WriteRune(unicode.ToTitle(r))
		b.WriteString(strings.ToLower(word[lead+size:]))
	}

	for i, r := range s {
		if isSpace(r) {
			flush(i)
			b.WriteRune(r)
			continue
		}
		if wordStart < 0 {
			wordStart = i
		}
	}
	flush(len(s))

	return b.String()
}

// RemoveAccents decomposes s (NFD) and drops combining diacritical marks,
// leaving the unaccented base letters.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
