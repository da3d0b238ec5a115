// Package pipeline screens a batch of résumés in two stages: a cheap prefix
// filter followed by full evaluation on a bounded worker pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/normalize"
	"github.com/spigell/resume-screener/internal/roles"
	"github.com/spigell/resume-screener/internal/scoring"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/signals"
)

var (
	ErrNoSources        = errors.New("no resumes to screen")
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")
)

const (
	ReasonTooLarge         = "file too large"
	ReasonUnreadable       = "unreadable resume"
	ReasonFastFilter       = "fast filter"
	ReasonLocationMismatch = "location mismatch"
)

var errTooLarge = errors.New(ReasonTooLarge)

// Request describes one screening run.
type Request struct {
	Paths     []string
	Role      string
	Threshold float64
	Location  string
}

// Pipeline is safe for concurrent use; every Run keeps its own state.
type Pipeline struct {
	extractor extract.Extractor
	signals   *signals.Extractor
	roles     *roles.Registry
	scorer    scoring.Scorer
	cache     cache.Cache
	logger    *zap.Logger
	progress  ProgressFunc
	now       func() time.Time

	workers       int
	stage1Workers int
	prefixChars   int
	maxTextChars  int
	minTextChars  int
	maxFileSize   int64
	strict        bool
}

// New builds a pipeline. Nil collaborators fall back to the built-in
// extractors, role profiles and lexicon.
func New(extractor extract.Extractor, sig *signals.Extractor, reg *roles.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		signals:   sig,
		roles:     reg,
	}
	defaults(p)
	for _, o := range opts {
		o(p)
	}

	if p.extractor == nil {
		p.extractor = extract.New()
	}
	if p.roles == nil {
		p.roles = roles.Default()
	}
	if p.signals == nil {
		p.signals = signals.NewExtractor(signals.DefaultLexicon(p.roles.Skills()...))
	}

	return p
}

// Run screens every path and returns one result per input in input order.
// Only systemic problems are returned as errors before any work starts. When
// ctx is canceled, undispatched files are skipped and the partial report is
// returned together with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	if len(req.Paths) == 0 {
		return nil, ErrNoSources
	}

	profile, err := p.resolve(req)
	if err != nil {
		return nil, err
	}

	r := &run{
		p:         p,
		profile:   profile,
		threshold: req.Threshold,
		filter:    p.filterKey(req.Location),
		location:  req.Location,
		paths:     req.Paths,
		logger:    logger.ForRun(p.logger, profile.Name, req.Location, req.Threshold),
		results:   make([]screening.MatchResult, len(req.Paths)),
		finished:  make([]bool, len(req.Paths)),
		texts:     make([]string, len(req.Paths)),
	}
	r.stats.Total = len(req.Paths)

	started := p.now()
	r.logger.Info("screening started", zap.Int("files", len(req.Paths)))

	survivors := make([]int, 0, len(req.Paths))
	var survivorsMu sync.Mutex
	runPool(ctx, p.stage1Workers, len(req.Paths), func(i int) {
		if r.prefilter(context.WithoutCancel(ctx), i) {
			survivorsMu.Lock()
			survivors = append(survivors, i)
			survivorsMu.Unlock()
		}
	})

	// stage 1 workers may finish out of order
	sort.Ints(survivors)
	r.logger.Debug("fast filter finished", zap.Int("survivors", len(survivors)))

	runPool(ctx, p.workers, len(survivors), func(j int) {
		r.evaluate(context.WithoutCancel(ctx), survivors[j])
	})

	report := r.report()
	report.Stats.Duration = p.now().Sub(started)

	r.logger.Info("screening finished",
		zap.Int("completed", report.Stats.Completed),
		zap.Int("shortlisted", report.Stats.Shortlisted),
		zap.Int("rejected", report.Stats.Rejected),
		zap.Int("cached", report.Stats.Cached),
		zap.Duration("duration", report.Stats.Duration),
	)

	if err := ctx.Err(); err != nil {
		r.logger.Warn("screening interrupted", zap.Error(err))
		return report, err
	}

	return report, nil
}

// EvaluateFile fully evaluates one résumé without the fast filter or the cache.
func (p *Pipeline) EvaluateFile(ctx context.Context, path string, req Request) (screening.MatchResult, error) {
	profile, err := p.resolve(req)
	if err != nil {
		return screening.MatchResult{}, err
	}

	name := filepath.Base(path)
	text, err := p.read(ctx, path)
	if err != nil {
		return screening.Reject(name, profile.Name, err.Error()), nil
	}
	if p.unreadable(text) {
		return screening.Reject(name, profile.Name, ReasonUnreadable), nil
	}

	res, err := p.evaluateText(name, text, profile, req.Threshold, req.Location)
	if err != nil {
		return screening.Reject(name, profile.Name, err.Error()), nil
	}
	return res, nil
}

func (p *Pipeline) resolve(req Request) (roles.Profile, error) {
	profile, err := p.roles.Get(req.Role)
	if err != nil {
		return roles.Profile{}, err
	}
	if math.IsNaN(req.Threshold) || req.Threshold < 0 || req.Threshold > 100 {
		return roles.Profile{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, req.Threshold)
	}
	return profile, nil
}

// filterKey captures every setting besides role and threshold that changes a result.
func (p *Pipeline) filterKey(location string) string {
	key := strings.ToLower(strings.TrimSpace(location))
	if key == "" {
		key = strings.ToLower(roles.AnyLocation)
	}
	if p.strict {
		key += "+strict"
	}
	if p.scorer.Bonus != (scoring.Bonus{}) {
		key += "+bonus"
	}
	return key + fmt.Sprintf("+text=%d/%d/%d", p.minTextChars, p.prefixChars, p.maxTextChars)
}

// read returns the normalized text of path, bounded by the size ceiling.
func (p *Pipeline) read(ctx context.Context, path string) (string, error) {
	if p.maxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("read error: %w", err)
		}
		if info.Size() > p.maxFileSize {
			return "", errTooLarge
		}
	}

	raw, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read error: %w", err)
	}

	return normalize.Text(raw, p.maxTextChars), nil
}

func (p *Pipeline) unreadable(text string) bool {
	return utf8.RuneCountInString(text) < p.minTextChars
}

// passesFastFilter reports whether any required skill occurs in the text prefix.
func (p *Pipeline) passesFastFilter(text string, profile roles.Profile) bool {
	if len(profile.Skills) == 0 {
		return true
	}
	// phrases are matched on flattened text during evaluation, so line breaks
	// inside a phrase must not hide it here either
	prefix := normalize.Flatten(normalize.Prefix(text, p.prefixChars))
	for _, skill := range profile.Skills {
		if strings.Contains(prefix, normalize.Flatten(strings.ToLower(skill))) {
			return true
		}
	}
	return false
}

func (p *Pipeline) evaluateText(name, text string, profile roles.Profile, threshold float64, location string) (result screening.MatchResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("evaluation failed: %v", rec)
		}
	}()

	if !roles.MatchLocation(text, location) {
		return screening.Reject(name, profile.Name, ReasonLocationMismatch), nil
	}

	sig := p.signals.Extract(text)
	score := p.scorer.Score(sig, profile)
	d := decision.Decide(decision.Input{
		Score:         score.Total,
		Threshold:     threshold,
		Experience:    sig.Experience.Years,
		MinExperience: profile.MinExperience,
		Required:      profile.Skills,
		Found:         sig.Skills,
		Strict:        p.strict,
	})

	return screening.MatchResult{
		File:           name,
		Role:           profile.Name,
		Score:          score.Total,
		Status:         d.Status,
		Reasons:        d.Reasons,
		FoundSkills:    sig.Skills,
		MissingSkills:  score.Missing,
		Experience:     sig.Experience.Years,
		ExperienceText: sig.Experience.Explanation,
		Certifications: sig.Certifications,
		Objective:      sig.Objective,
		Projects:       sig.Projects,
	}, nil
}
