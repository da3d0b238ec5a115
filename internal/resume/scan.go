package resume

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScanStats summarises a directory walk.
type ScanStats struct {
	Scanned int
	Matched int
	Failed  int
}

// Scan walks root and collects supported documents sorted by path.
// Unreadable entries are counted as failed and skipped.
func Scan(root string, skipHidden bool) (*Files, ScanStats, error) {
	var stats ScanStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("source directory is required")
	}

	files := &Files{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil
		}
		if path != root && skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		stats.Scanned++
		if _, ok := FormatOf(path); !ok {
			return nil
		}

		file, err := Stat(path)
		if err != nil {
			stats.Failed++
			return nil
		}
		stats.Matched++
		files.Items = append(files.Items, file)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files.Items, func(i, j int) bool {
		return files.Items[i].Path < files.Items[j].Path
	})

	return files, stats, nil
}

// IsHidden reports whether the base name starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
