package signals

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into tokens for single-word skill matching.
type Tokenizer interface {
	Tokenize(text string) []string
}

// WordTokenizer splits on anything other than letters, digits and "+#.",
// so "c++", "c#" and "node.js" survive as tokens. Leading and trailing dots are dropped.
type WordTokenizer struct{}

func (WordTokenizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})

	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
