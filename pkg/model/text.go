package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s used for every case-insensitive
// comparison in filters, sorting and search.
func Fold(s string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Fold().String(s)
}

// ParseLeadingInt parses the integer at the start of s, ignoring surrounding
// whitespace and anything after the digits: "18+" is 18, "12 years" is 12.
// It returns false when s does not start with an optionally signed digit run.
func ParseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	n := 0
	digits := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		// Clamp instead of overflowing; nothing in a volunteer sheet gets close.
		if n < 1<<40 {
			n = n*10 + int(c-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// IsBlank reports whether a cell value is empty or whitespace only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
