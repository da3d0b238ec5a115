// Package cache memoizes screening results per file, role, filter and threshold.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
)

// Key identifies a cached decision. Results are not invalidated when the
// file content changes.
type Key struct {
	File      string
	Role      string
	Filter    string
	Threshold float64
}

// NewKey builds a key from a file path, using its base name.
func NewKey(path, role, filter string, threshold float64) Key {
	return Key{
		File:      filepath.Base(path),
		Role:      role,
		Filter:    filter,
		Threshold: threshold,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s_%s", k.File, k.Role, k.Filter, strconv.FormatFloat(k.Threshold, 'f', -1, 64))
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "_")

// Filename is the on-disk name of the entry.
func (k Key) Filename() string {
	return unsafeName.Replace(k.String()) + ".json"
}

// Cache stores complete results. Implementations must be safe for concurrent use
// and never expose a partially written result.
type Cache interface {
	Get(ctx context.Context, key Key) (screening.MatchResult, bool, error)
	Put(ctx context.Context, key Key, result screening.MatchResult) error
}

// GetOrCompute returns the cached result for key or computes and stores it.
// Cache failures are logged and the result is computed without caching.
// Errors from compute are returned and nothing is stored.
func GetOrCompute(ctx context.Context, c Cache, key Key, compute func() (screening.MatchResult, error), logger *zap.Logger) (screening.MatchResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		return compute()
	}

	cached, ok, err := c.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn("cache read failed, recomputing", zap.String("key", key.String()), zap.Error(err))
	case ok:
		logger.Debug("cache hit", zap.String("key", key.String()))
		return cached, nil
	}

	result, err := compute()
	if err != nil {
		return screening.MatchResult{}, err
	}

	if err := c.Put(ctx, key, result); err != nil {
		logger.Warn("cache write failed", zap.String("key", key.String()), zap.Error(err))
	}

	return result, nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, Key) (screening.MatchResult, bool, error) {
	return screening.MatchResult{}, false, nil
}

func (Nop) Put(context.Context, Key, screening.MatchResult) error { return nil }
