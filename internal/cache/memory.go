package cache

import (
	"context"
	"sync"

	"github.com/spigell/resume-screener/internal/screening"
)

// Memory is an in-process cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]screening.MatchResult
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]screening.MatchResult)}
}

func (m *Memory) Get(_ context.Context, key Key) (screening.MatchResult, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.entries[key]
	if !ok {
		return screening.MatchResult{}, false, nil
	}
	return r.Clone(), true, nil
}

func (m *Memory) Put(_ context.Context, key Key, result screening.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = result.Clone()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
