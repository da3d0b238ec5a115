package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/normalize"
	"github.com/spigell/resume-screener/internal/scoring"
)

const (
	DefaultWorkers = 4
	// MaxWorkers bounds the full evaluation pool regardless of the batch size.
	MaxWorkers = 8

	DefaultMinTextChars = 200
	DefaultMaxFileSize  = 3 << 20
)

// ProgressFunc is called once per finished file with a monotonically
// increasing done count.
type ProgressFunc func(done, total int, file string)

type Option func(*Pipeline)

// WithWorkers sets the full evaluation pool size, capped at MaxWorkers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = min(n, MaxWorkers)
		}
	}
}

// WithStage1Workers sets the fast filter concurrency. One means sequential.
func WithStage1Workers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.stage1Workers = min(n, MaxWorkers)
		}
	}
}

func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.cache = c
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithPrefixChars sets how much normalized text the fast filter inspects.
func WithPrefixChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.prefixChars = n
		}
	}
}

func WithMaxTextChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxTextChars = n
		}
	}
}

// WithMinTextChars sets the length below which a résumé is unreadable.
func WithMinTextChars(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.minTextChars = n
		}
	}
}

// WithMaxFileSize sets the size ceiling in bytes. Zero disables the check.
func WithMaxFileSize(n int64) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.maxFileSize = n
		}
	}
}

// WithStrict enables the experience and missing-skills decision checks.
func WithStrict(strict bool) Option {
	return func(p *Pipeline) {
		p.strict = strict
	}
}

func WithScorer(s scoring.Scorer) Option {
	return func(p *Pipeline) {
		p.scorer = s
	}
}

// WithClock sets the clock used for timing stats.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func defaults(p *Pipeline) {
	p.workers = DefaultWorkers
	p.stage1Workers = 1
	p.cache = cache.Nop{}
	p.logger = zap.NewNop()
	p.prefixChars = normalize.PrefixChars
	p.maxTextChars = normalize.MaxTextChars
	p.minTextChars = DefaultMinTextChars
	p.maxFileSize = DefaultMaxFileSize
	p.now = time.Now
}
