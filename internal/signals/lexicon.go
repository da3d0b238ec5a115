package signals

import (
	"sort"
	"strings"

	"github.com/spigell/resume-screener/internal/normalize"
)

// DefaultSkills is the built-in skill vocabulary.
var DefaultSkills = []string{
	"python", "java", "sql", "mysql", "postgresql", "mongodb",
	"django", "flask", "fastapi",
	"aws", "azure", "gcp",
	"docker", "kubernetes",
	"linux", "git", "github",
	"html", "css", "javascript",
	"react", "node", "spring",
	"machine learning", "deep learning", "nlp",
}

// Lexicon is an immutable skill vocabulary split into multi-word phrases and single tokens.
type Lexicon struct {
	phrases []string
	tokens  map[string]struct{}
}

// NewLexicon lowercases and deduplicates skills.
func NewLexicon(skills ...string) *Lexicon {
	l := &Lexicon{tokens: make(map[string]struct{})}
	seen := make(map[string]struct{})
	for _, s := range skills {
		s = normalize.Flatten(strings.ToLower(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}

		if strings.Contains(s, " ") {
			l.phrases = append(l.phrases, s)
			continue
		}
		l.tokens[s] = struct{}{}
	}
	sort.Strings(l.phrases)
	return l
}

// DefaultLexicon is DefaultSkills plus extra, typically the skills of every role.
func DefaultLexicon(extra ...string) *Lexicon {
	return NewLexicon(append(append([]string(nil), DefaultSkills...), extra...)...)
}

// Size returns the number of distinct skills.
func (l *Lexicon) Size() int {
	return len(l.phrases) + len(l.tokens)
}

// Match returns the sorted skills found in text. Phrases match by substring
// of the flattened text; single words only match whole tokens.
func (l *Lexicon) Match(text string, tok Tokenizer) []string {
	found := make(map[string]struct{})

	flat := normalize.Flatten(text)
	for _, p := range l.phrases {
		if strings.Contains(flat, p) {
			found[p] = struct{}{}
		}
	}

	for _, t := range tok.Tokenize(text) {
		if _, ok := l.tokens[t]; ok {
			found[t] = struct{}{}
		}
	}

	skills := make([]string, 0, len(found))
	for s := range found {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}
