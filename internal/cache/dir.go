package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spigell/resume-screener/internal/screening"
)

// Dir keeps one JSON file per key in a directory.
type Dir struct {
	path string
}

// NewDir creates the directory when missing.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Get(ctx context.Context, key Key) (screening.MatchResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return screening.MatchResult{}, false, err
	}

	data, err := os.ReadFile(filepath.Join(d.path, key.Filename()))
	if errors.Is(err, fs.ErrNotExist) {
		return screening.MatchResult{}, false, nil
	}
	if err != nil {
		return screening.MatchResult{}, false, fmt.Errorf("read cache entry: %w", err)
	}

	var r screening.MatchResult
	if err := json.Unmarshal(data, &r); err != nil {
		return screening.MatchResult{}, false, fmt.Errorf("decode cache entry %s: %w", key.Filename(), err)
	}
	return r, true, nil
}

// Put writes to a temporary file and renames it over the entry so readers
// see either the old or the new record.
func (d *Dir) Put(ctx context.Context, key Key, result screening.MatchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(d.path, ".entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(d.path, key.Filename())); err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}
