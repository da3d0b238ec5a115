package cache

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/signals"
)

func sampleResult(file string) screening.MatchResult {
	return screening.MatchResult{
		File:           file,
		Role:           "Python Developer",
		Score:          23.33,
		Status:         decision.Rejected,
		Reasons:        []string{decision.ReasonBelowThreshold},
		FoundSkills:    []string{"python"},
		MissingSkills:  []string{"sql", "git"},
		Experience:     signals.NotMentioned,
		ExperienceText: "No experience date ranges found in resume.",
	}
}

func TestKeyFilename(t *testing.T) {
	t.Parallel()

	key := NewKey("/data/resumes/jane.pdf", "Python Developer", "Any", 70)
	if got := key.Filename(); got != "jane.pdf_Python Developer_Any_70.json" {
		t.Fatalf("unexpected filename %q", got)
	}

	key = NewKey("a.pdf", "UI/UX", "Any", 62.5)
	if got := key.Filename(); got != "a.pdf_UI_UX_Any_62.5.json" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func backends(t *testing.T) map[string]Cache {
	t.Helper()

	dir, err := NewDir(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("new dir cache: %v", err)
	}

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite cache: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Cache{
		"memory": NewMemory(),
		"dir":    dir,
		"sqlite": db,
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := NewKey("jane.pdf", "Python Developer", "Any", 70)

			if _, ok, err := c.Get(ctx, key); err != nil || ok {
				t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
			}

			want := sampleResult("jane.pdf")
			if err := c.Put(ctx, key, want); err != nil {
				t.Fatalf("put: %v", err)
			}

			got, ok, err := c.Get(ctx, key)
			if err != nil || !ok {
				t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %+v, got %+v", want, got)
			}

			want.Score = 90
			want.Status = decision.Shortlisted
			if err := c.Put(ctx, key, want); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _, _ = c.Get(ctx, key)
			if got.Score != 90 || got.Status != decision.Shortlisted {
				t.Fatalf("overwrite not visible: %+v", got)
			}

			other := NewKey("jane.pdf", "Python Developer", "Any", 80)
			if _, ok, _ := c.Get(ctx, other); ok {
				t.Fatalf("threshold must be part of the key")
			}
		})
	}
}

func TestBackendsConcurrentWritesSameKey(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := NewKey("race.pdf", "Java Developer", "Any", 70)

			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := c.Put(ctx, key, sampleResult("race.pdf")); err != nil {
						t.Errorf("put: %v", err)
					}
					if _, _, err := c.Get(ctx, key); err != nil {
						t.Errorf("get: %v", err)
					}
				}()
			}
			wg.Wait()

			got, ok, err := c.Get(ctx, key)
			if err != nil || !ok {
				t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(got, sampleResult("race.pdf")) {
				t.Fatalf("torn result: %+v", got)
			}
		})
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	key := NewKey("a.pdf", "r", "Any", 70)
	r := sampleResult("a.pdf")
	if err := m.Put(context.Background(), key, r); err != nil {
		t.Fatalf("put: %v", err)
	}
	r.Reasons[0] = "mutated"

	got, _, _ := m.Get(context.Background(), key)
	if got.Reasons[0] != decision.ReasonBelowThreshold {
		t.Fatalf("cache entry mutated through caller slice")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", m.Len())
	}
}

type failingCache struct {
	getErr error
	putErr error
	puts   int
}

func (f *failingCache) Get(context.Context, Key) (screening.MatchResult, bool, error) {
	return screening.MatchResult{}, false, f.getErr
}

func (f *failingCache) Put(context.Context, Key, screening.MatchResult) error {
	f.puts++
	return f.putErr
}

func TestGetOrCompute(t *testing.T) {
	ctx := context.Background()
	key := NewKey("a.pdf", "Python Developer", "Any", 70)

	t.Run("miss then hit", func(t *testing.T) {
		m := NewMemory()
		calls := 0
		compute := func() (screening.MatchResult, error) {
			calls++
			return sampleResult("a.pdf"), nil
		}

		first, err := GetOrCompute(ctx, m, key, compute, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := GetOrCompute(ctx, m, key, compute, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if calls != 1 {
			t.Fatalf("expected compute once, got %d", calls)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("expected identical results, got %+v and %+v", first, second)
		}
	})

	t.Run("compute error is not cached", func(t *testing.T) {
		m := NewMemory()
		boom := errors.New("boom")
		_, err := GetOrCompute(ctx, m, key, func() (screening.MatchResult, error) {
			return screening.MatchResult{}, boom
		}, nil)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if m.Len() != 0 {
			t.Fatalf("expected nothing cached")
		}
	})

	t.Run("cache failures degrade to compute", func(t *testing.T) {
		core, observed := observer.New(zapcore.WarnLevel)
		fc := &failingCache{getErr: errors.New("disk gone"), putErr: errors.New("disk gone")}

		got, err := GetOrCompute(ctx, fc, key, func() (screening.MatchResult, error) {
			return sampleResult("a.pdf"), nil
		}, zap.New(core))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.File != "a.pdf" {
			t.Fatalf("unexpected result: %+v", got)
		}
		if fc.puts != 1 {
			t.Fatalf("expected a put attempt, got %d", fc.puts)
		}

		entries := observed.All()
		if len(entries) != 2 {
			t.Fatalf("expected 2 warnings, got %d", len(entries))
		}
		if entries[0].Message != "cache read failed, recomputing" || entries[1].Message != "cache write failed" {
			t.Fatalf("unexpected log messages: %q, %q", entries[0].Message, entries[1].Message)
		}
	})

	t.Run("nil cache computes", func(t *testing.T) {
		got, err := GetOrCompute(ctx, nil, key, func() (screening.MatchResult, error) {
			return sampleResult("b.pdf"), nil
		}, nil)
		if err != nil || got.File != "b.pdf" {
			t.Fatalf("unexpected result %+v, %v", got, err)
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{BackendMemory, BackendDir, BackendSQLite, BackendNone} {
		path := filepath.Join(t.TempDir(), "store")
		if backend == BackendSQLite {
			path += ".db"
		}
		c, closer, err := Open(ctx, backend, path)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", backend, err)
		}
		if c == nil || closer == nil {
			t.Fatalf("%s: expected cache and closer", backend)
		}
		if err := closer.Close(); err != nil {
			t.Fatalf("%s: close: %v", backend, err)
		}
	}

	if _, _, err := Open(ctx, "redis", ""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
