// Package normalize prepares extracted text for substring and token matching.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxTextChars bounds the text handed to signal extraction.
	MaxTextChars = 12000
	// PrefixChars bounds the text inspected by the fast filter.
	PrefixChars = 3000
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	dashes          = strings.NewReplacer("‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "−", "-")
)

// Text lowercases s, cleans whitespace and truncates the result to max runes.
// A non-positive max disables truncation. Line breaks are kept, blank lines are dropped.
func Text(s string, max int) string {
	s = strings.ToLower(s)
	s = dashes.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r):
			return ' '
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}

	return Prefix(strings.Join(kept, "\n"), max)
}

// Prefix returns the first n runes of s. A non-positive n returns s unchanged.
func Prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Flatten joins lines with single spaces so phrases broken across lines still match.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
