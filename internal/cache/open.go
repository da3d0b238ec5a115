package cache

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// DefaultDir matches the cache location used by earlier releases.
const DefaultDir = ".cache"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured backend. The returned closer releases it.
func Open(ctx context.Context, backend, path string) (Cache, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendDir:
		if strings.TrimSpace(path) == "" {
			path = DefaultDir
		}
		d, err := NewDir(path)
		if err != nil {
			return nil, nil, err
		}
		return d, nopCloser{}, nil
	case BackendMemory:
		return NewMemory(), nopCloser{}, nil
	case BackendSQLite:
		if strings.TrimSpace(path) == "" {
			path = "screener-cache.db"
		}
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendNone:
		return Nop{}, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}
}
