package core

import (
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/core/regions"
)

// NormalizeRut formats a Chilean RUT/RUN as "12.345.678-K".
//
// Every character other than a digit or K/k is dropped. Inputs that do not
// leave a numeric body plus a digit or K check digit are returned unchanged.
// The check digit is not verified.
func NormalizeRut(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteByte('K')
		}
	}

	clean := b.String()
	if len(clean) < 2 {
		return s
	}

	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]
	if !isDigits(body) || !(isDigits(dv) || dv == "K") {
		return s
	}

	return groupThousands(body) + "-" + dv
}

// NormalizeRegion maps a Chilean region alias to its official name.
// Unknown values fall back to the title-cased, trimmed input.
func NormalizeRegion(s string) string {
	key := strings.ToUpper(Trim(RemoveAccents(s)))
	if name, ok := regions.Lookup(key); ok {
		return name
	}
	return TitleCase(Trim(s))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// groupThousands inserts a dot every three digits counting from the right.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(n + n/3)

	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
