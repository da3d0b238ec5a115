package pipeline

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/roles"
	"github.com/spigell/resume-screener/internal/screening"
)

type outcome int

const (
	outcomeCached outcome = iota
	outcomeFastRejected
	outcomeEvaluated
	outcomeFailed
)

// run holds the state of a single Run call.
type run struct {
	p         *Pipeline
	profile   roles.Profile
	threshold float64
	filter    string
	location  string
	paths     []string
	logger    *zap.Logger

	mu       sync.Mutex
	results  []screening.MatchResult
	finished []bool
	texts    []string
	done     int
	stats    Stats
}

func (r *run) key(i int) cache.Key {
	return cache.NewKey(r.paths[i], r.profile.Name, r.filter, r.threshold)
}

// prefilter resolves cache hits and cheap rejections. It reports whether
// file i needs full evaluation.
func (r *run) prefilter(ctx context.Context, i int) bool {
	path := r.paths[i]
	name := filepath.Base(path)
	key := r.key(i)

	cached, ok, err := r.p.cache.Get(ctx, key)
	switch {
	case err != nil:
		r.logger.Warn("cache read failed, recomputing", zap.String("key", key.String()), zap.Error(err))
	case ok:
		r.finish(i, cached, outcomeCached)
		return false
	}

	text, err := r.p.read(ctx, path)
	if err != nil {
		r.finish(i, screening.Reject(name, r.profile.Name, err.Error()), outcomeFailed)
		return false
	}

	var rejected *screening.MatchResult
	switch {
	case r.p.unreadable(text):
		res := screening.Reject(name, r.profile.Name, ReasonUnreadable)
		rejected = &res
	case !r.p.passesFastFilter(text, r.profile):
		res := screening.Reject(name, r.profile.Name, decision.ReasonMissingSkills, ReasonFastFilter)
		rejected = &res
	}

	if rejected != nil {
		if err := r.p.cache.Put(ctx, key, *rejected); err != nil {
			r.logger.Warn("cache write failed", zap.String("key", key.String()), zap.Error(err))
		}
		r.finish(i, *rejected, outcomeFastRejected)
		return false
	}

	r.mu.Lock()
	r.texts[i] = text
	r.mu.Unlock()
	return true
}

func (r *run) evaluate(ctx context.Context, i int) {
	name := filepath.Base(r.paths[i])

	r.mu.Lock()
	text := r.texts[i]
	r.texts[i] = ""
	r.mu.Unlock()

	res, err := cache.GetOrCompute(ctx, r.p.cache, r.key(i), func() (screening.MatchResult, error) {
		return r.p.evaluateText(name, text, r.profile, r.threshold, r.location)
	}, r.logger)
	if err != nil {
		r.logger.Error("evaluation failed", zap.String(logger.FieldFile, name), zap.Error(err))
		r.finish(i, screening.Reject(name, r.profile.Name, err.Error()), outcomeFailed)
		return
	}

	r.finish(i, res, outcomeEvaluated)
}

// finish records the final result of file i and reports progress.
func (r *run) finish(i int, res screening.MatchResult, how outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished[i] {
		return
	}
	r.finished[i] = true
	r.results[i] = res
	r.done++

	switch how {
	case outcomeCached:
		r.stats.Cached++
	case outcomeFastRejected:
		r.stats.FastRejected++
	case outcomeEvaluated:
		r.stats.Evaluated++
	case outcomeFailed:
		r.stats.Failed++
	}
	if res.Shortlisted() {
		r.stats.Shortlisted++
	} else {
		r.stats.Rejected++
	}

	r.logger.Debug("file screened",
		zap.String(logger.FieldFile, res.File),
		zap.String("status", string(res.Status)),
		zap.Float64("score", res.Score),
		zap.Strings("reasons", res.Reasons),
	)

	if r.p.progress != nil {
		r.p.progress(r.done, len(r.paths), res.File)
	}
}

func (r *run) report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]screening.MatchResult, 0, r.done)
	for i, ok := range r.finished {
		if ok {
			results = append(results, r.results[i])
		}
	}

	stats := r.stats
	stats.Completed = r.done

	return &Report{
		Role:      r.profile.Name,
		Threshold: r.threshold,
		Location:  r.location,
		Results:   results,
		Stats:     stats,
	}
}
