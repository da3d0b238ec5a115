// Package signals derives structured evidence from normalized résumé text.
package signals

import (
	"time"
)

// Signals is the evidence found in a single résumé.
type Signals struct {
	Skills         []string
	Experience     Experience
	Certifications []string
	Objective      string
	Projects       []string
}

// Extractor derives Signals from normalized text. It is safe for concurrent use.
type Extractor struct {
	lexicon   *Lexicon
	tokenizer Tokenizer
	now       func() time.Time
}

type Option func(*Extractor)

// WithTokenizer replaces the default WordTokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tokenizer = t
		}
	}
}

// WithClock sets the clock used to resolve "present" and validate ranges.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExtractor(lexicon *Lexicon, opts ...Option) *Extractor {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	e := &Extractor{
		lexicon:   lexicon,
		tokenizer: WordTokenizer{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Skills returns the lexicon skills present in text.
func (e *Extractor) Skills(text string) []string {
	return e.lexicon.Match(text, e.tokenizer)
}

// Extract runs every heuristic over normalized text.
func (e *Extractor) Extract(text string) Signals {
	return Signals{
		Skills:         e.Skills(text),
		Experience:     MineExperience(text, e.now()),
		Certifications: Certifications(text),
		Objective:      Objective(text),
		Projects:       Projects(text),
	}
}
