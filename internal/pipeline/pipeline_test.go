package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/roles"
	"github.com/spigell/resume-screener/internal/signals"
)

const pythonResume = `Jane Doe
Senior Python developer based in Hyderabad, India.
Skills: Python, Django, Flask, SQL, Git, Docker
Experience
Software Engineer at Acme Corp 2015 - 2022
Backend developer at Beta Labs 2018 - 2020
Built REST services, data pipelines and internal tooling for analytics teams.
`

const designerResume = `John Roe
Graphic designer focused on branding and print.
Tools: Photoshop, Illustrator, InDesign, Figma
Experience
Designer at Studio Nine 2016 - 2023
Created brand identities, packaging and editorial layouts for retail clients across the region.
`

const analystResume = `Priya Shah
Business analyst based in Pune.
Built weekly reporting with Power
BI dashboards for regional sales teams 2015 - 2022
Prepared quarterly summaries and forecasts for the management board.
`

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls atomic.Int64
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (string, error) {
	f.calls.Add(1)
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return "", err
	}
	return f.texts[name], nil
}

type panicTokenizer struct{}

func (panicTokenizer) Tokenize(string) []string { panic("tokenizer exploded") }

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("stub"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func pythonRequest(paths []string) Request {
	return Request{Paths: paths, Role: "Python Developer", Threshold: 70}
}

func TestRunShortlistsAndRejects(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{
		texts: map[string]string{
			"a.pdf":  pythonResume,
			"b.pdf":  designerResume,
			"c.docx": "python dev",
		},
		errs: map[string]error{"d.pdf": errors.New("malformed xref table")},
	}
	paths := writeFiles(t, "a.pdf", "b.pdf", "c.docx", "d.pdf")

	report, err := New(ext, nil, nil).Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(report.Results))
	}
	for i, res := range report.Results {
		if res.File != filepath.Base(paths[i]) {
			t.Fatalf("result %d: expected file %s, got %s", i, filepath.Base(paths[i]), res.File)
		}
	}

	a := report.Results[0]
	if a.Status != decision.Shortlisted || a.Score != 100 {
		t.Fatalf("expected a.pdf shortlisted with 100, got %s %.2f", a.Status, a.Score)
	}
	if a.Experience != signals.YearsOf(7) {
		t.Fatalf("expected 7 years of experience, got %s", a.Experience)
	}
	if len(a.MissingSkills) != 0 {
		t.Fatalf("expected no missing skills, got %v", a.MissingSkills)
	}
	if !reflect.DeepEqual(a.Reasons, []string{decision.ReasonMeetsRequirement}) {
		t.Fatalf("unexpected reasons for a.pdf: %v", a.Reasons)
	}

	if got := report.Results[1].Reasons; !reflect.DeepEqual(got, []string{decision.ReasonMissingSkills, ReasonFastFilter}) {
		t.Fatalf("expected fast filter rejection, got %v", got)
	}
	if got := report.Results[2].Reasons; !reflect.DeepEqual(got, []string{ReasonUnreadable}) {
		t.Fatalf("expected unreadable rejection, got %v", got)
	}
	if got := report.Results[2].Experience; got.Known {
		t.Fatalf("expected experience sentinel for unreadable resume, got %s", got)
	}
	d := report.Results[3]
	if d.Status != decision.Rejected || len(d.Reasons) != 1 || !strings.HasPrefix(d.Reasons[0], "read error: ") {
		t.Fatalf("expected read error rejection, got %+v", d)
	}

	expected := Stats{Total: 4, Completed: 4, FastRejected: 2, Evaluated: 1, Failed: 1, Shortlisted: 1, Rejected: 3}
	got := report.Stats
	got.Duration = 0
	if got != expected {
		t.Fatalf("expected stats %+v, got %+v", expected, got)
	}

	if len(report.Shortlisted()) != 1 || len(report.Rejected()) != 3 {
		t.Fatalf("unexpected partition: %d shortlisted, %d rejected", len(report.Shortlisted()), len(report.Rejected()))
	}
}

func TestRunSystemicErrors(t *testing.T) {
	t.Parallel()

	p := New(&fakeExtractor{}, nil, nil)
	paths := writeFiles(t, "a.pdf")

	tests := []struct {
		name   string
		req    Request
		expect error
	}{
		{
			name:   "no sources",
			req:    Request{Role: "Python Developer", Threshold: 70},
			expect: ErrNoSources,
		},
		{
			name:   "unknown role",
			req:    Request{Paths: paths, Role: "Astronaut", Threshold: 70},
			expect: roles.ErrUnknownRole,
		},
		{
			name:   "threshold above range",
			req:    Request{Paths: paths, Role: "Python Developer", Threshold: 101},
			expect: ErrInvalidThreshold,
		},
		{
			name:   "negative threshold",
			req:    Request{Paths: paths, Role: "Python Developer", Threshold: -1},
			expect: ErrInvalidThreshold,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report, err := p.Run(context.Background(), tt.req)
			if !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
			if report != nil {
				t.Fatalf("expected no report on systemic error")
			}
		})
	}
}

func TestRunCacheHitSkipsExtraction(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume, "b.pdf": designerResume}}
	mem := cache.NewMemory()
	p := New(ext, nil, nil, WithCache(mem))
	paths := writeFiles(t, "a.pdf", "b.pdf")

	first, err := p.Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	calls := ext.calls.Load()
	if calls != 2 {
		t.Fatalf("expected 2 extractions, got %d", calls)
	}
	if mem.Len() != 2 {
		t.Fatalf("expected both results cached, got %d", mem.Len())
	}

	second, err := p.Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := ext.calls.Load(); got != calls {
		t.Fatalf("expected no extraction on cache hit, got %d calls", got)
	}
	if second.Stats.Cached != 2 {
		t.Fatalf("expected 2 cache hits, got %d", second.Stats.Cached)
	}

	firstJSON, err := json.Marshal(first.Results)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	secondJSON, err := json.Marshal(second.Results)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("expected identical results:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestRunDeterministicWithoutCache(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume, "b.pdf": designerResume}}
	p := New(ext, nil, nil, WithWorkers(2))
	paths := writeFiles(t, "a.pdf", "b.pdf")

	var previous []byte
	for i := 0; i < 3; i++ {
		report, err := p.Run(context.Background(), pythonRequest(paths))
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		encoded, err := json.Marshal(report.Results)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if previous != nil && string(previous) != string(encoded) {
			t.Fatalf("run %d differs:\n%s\n%s", i, previous, encoded)
		}
		previous = encoded
	}
}

func TestRunFileTooLarge(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume}}
	paths := writeFiles(t, "a.pdf")

	report, err := New(ext, nil, nil, WithMaxFileSize(2)).Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.Results[0].Reasons; !reflect.DeepEqual(got, []string{ReasonTooLarge}) {
		t.Fatalf("expected size rejection, got %v", got)
	}
	if ext.calls.Load() != 0 {
		t.Fatalf("expected oversized file not to be parsed")
	}
}

func TestRunLocation(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume}}
	p := New(ext, nil, nil, WithCache(cache.NewMemory()))
	paths := writeFiles(t, "a.pdf")

	tests := []struct {
		location string
		status   decision.Status
		reasons  []string
	}{
		{location: "Pune", status: decision.Rejected, reasons: []string{ReasonLocationMismatch}},
		{location: "Hyderabad", status: decision.Shortlisted, reasons: []string{decision.ReasonMeetsRequirement}},
		{location: roles.AnyLocation, status: decision.Shortlisted, reasons: []string{decision.ReasonMeetsRequirement}},
	}

	for _, tt := range tests {

		tt := tt
		req := pythonRequest(paths)
		req.Location = tt.location

		report, err := p.Run(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.location, err)
		}
		res := report.Results[0]
		if res.Status != tt.status || !reflect.DeepEqual(res.Reasons, tt.reasons) {
			t.Fatalf("%s: expected %s %v, got %s %v", tt.location, tt.status, tt.reasons, res.Status, res.Reasons)
		}
	}
}

func TestRunRecoversEvaluationPanic(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume}}
	sig := signals.NewExtractor(signals.DefaultLexicon(), signals.WithTokenizer(panicTokenizer{}))
	mem := cache.NewMemory()
	paths := writeFiles(t, "a.pdf")

	report, err := New(ext, sig, nil, WithCache(mem)).Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := report.Results[0]
	if res.Status != decision.Rejected || len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "tokenizer exploded") {
		t.Fatalf("expected panic converted to rejection, got %+v", res)
	}
	if report.Stats.Failed != 1 {
		t.Fatalf("expected 1 failure, got %d", report.Stats.Failed)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected failures not to be cached")
	}
}

func TestRunProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	names := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"}
	texts := make(map[string]string, len(names))
	for i, name := range names {
		if i%2 == 0 {
			texts[name] = pythonResume
		} else {
			texts[name] = designerResume
		}
	}
	ext := &fakeExtractor{texts: texts}
	paths := writeFiles(t, names...)

	var (
		mu    sync.Mutex
		dones []int
		files = make(map[string]int)
	)
	progress := func(done, total int, file string) {
		mu.Lock()
		defer mu.Unlock()
		if total != len(names) {
			t.Errorf("expected total %d, got %d", len(names), total)
		}
		dones = append(dones, done)
		files[file]++
	}

	_, err := New(ext, nil, nil, WithWorkers(3), WithStage1Workers(2), WithProgress(progress)).
		Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dones) != len(names) {
		t.Fatalf("expected %d progress calls, got %d", len(names), len(dones))
	}
	for i, done := range dones {
		if done != i+1 {
			t.Fatalf("expected done %d at call %d, got %d", i+1, i, done)
		}
	}
	for _, name := range names {
		if files[name] != 1 {
			t.Fatalf("expected one progress call for %s, got %d", name, files[name])
		}
	}
}

func TestRunCanceledReturnsPartialReport(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{
		"a.pdf": pythonResume,
		"b.pdf": pythonResume,
		"c.pdf": pythonResume,
	}}
	paths := writeFiles(t, "a.pdf", "b.pdf", "c.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(ext, nil, nil, WithWorkers(1), WithProgress(func(int, int, string) { cancel() }))
	report, err := p.Run(ctx, pythonRequest(paths))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatalf("expected partial report")
	}
	if len(report.Results) != 1 || report.Results[0].File != "a.pdf" {
		t.Fatalf("expected only a.pdf to finish, got %+v", report.Results)
	}
	if report.Stats.Completed != 1 || report.Stats.Total != 3 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
}

func TestEvaluateFile(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume, "b.pdf": "too short"}}
	p := New(ext, nil, nil)
	paths := writeFiles(t, "a.pdf", "b.pdf")

	res, err := p.EvaluateFile(context.Background(), paths[0], Request{Role: "python developer", Threshold: 70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Role != "Python Developer" || res.Score != 100 || !res.Shortlisted() {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = p.EvaluateFile(context.Background(), paths[1], Request{Role: "Python Developer", Threshold: 70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.Reasons, []string{ReasonUnreadable}) {
		t.Fatalf("expected unreadable, got %v", res.Reasons)
	}

	if _, err := p.EvaluateFile(context.Background(), paths[0], Request{Role: "Chef"}); !errors.Is(err, roles.ErrUnknownRole) {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}

func TestFastFilterNeverRejectsFullMatch(t *testing.T) {
	t.Parallel()

	texts := []string{
		pythonResume,
		designerResume,
		analystResume,
		"c++ firmware for microcontrollers and rtos " + strings.Repeat("x", 300),
		"smart\ncontracts on the ethereum\tnetwork",
	}
	for _, text := range texts {
		normalized := strings.ToLower(text)
		flat := strings.Join(strings.Fields(normalized), " ")
		for _, profile := range roles.Default().Profiles() {
			full := New(nil, nil, nil, WithPrefixChars(len(normalized)+1))
			short := New(nil, nil, nil, WithPrefixChars(40))

			fullPass := full.passesFastFilter(normalized, profile)
			if short.passesFastFilter(normalized, profile) && !fullPass {
				t.Fatalf("%s: prefix passed but full text did not", profile.Name)
			}

			contains := false
			for _, skill := range profile.Skills {
				contains = contains || strings.Contains(flat, skill)
			}
			if fullPass != contains {
				t.Fatalf("%s: expected full prefix pass=%v, got %v", profile.Name, contains, fullPass)
			}
		}
	}
}

func TestRunCacheSeparatesTextSettings(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": pythonResume}}
	paths := writeFiles(t, "a.pdf")
	mem := cache.NewMemory()

	strict, err := New(ext, nil, nil, WithCache(mem), WithMinTextChars(1000)).Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strict.Results[0].Reasons; !reflect.DeepEqual(got, []string{ReasonUnreadable}) {
		t.Fatalf("expected unreadable rejection, got %v", got)
	}

	relaxed, err := New(ext, nil, nil, WithCache(mem)).Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relaxed.Stats.Cached != 0 || relaxed.Results[0].Status != decision.Shortlisted {
		t.Fatalf("expected a fresh evaluation, got cached=%d status=%s", relaxed.Stats.Cached, relaxed.Results[0].Status)
	}
	if ext.calls.Load() != 2 {
		t.Fatalf("expected 2 extractions, got %d", ext.calls.Load())
	}

	again, err := New(ext, nil, nil, WithCache(mem)).Run(context.Background(), pythonRequest(paths))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Stats.Cached != 1 {
		t.Fatalf("expected the same settings to hit the cache, got cached=%d", again.Stats.Cached)
	}
}

func TestRunKeepsPhraseWrappedAcrossLines(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{texts: map[string]string{"a.pdf": analystResume}}
	paths := writeFiles(t, "a.pdf")
	p := New(ext, nil, nil, WithMinTextChars(50))
	req := Request{Paths: paths, Role: "Data Analyst", Threshold: 0}

	report, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := report.Results[0]
	if got.Status != decision.Shortlisted {
		t.Fatalf("expected shortlisted, got %s %v", got.Status, got.Reasons)
	}
	if !reflect.DeepEqual(got.FoundSkills, []string{"power bi"}) {
		t.Fatalf("expected power bi to be found, got %v", got.FoundSkills)
	}

	single, err := p.EvaluateFile(context.Background(), paths[0], req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(single, got) {
		t.Fatalf("expected run and single evaluation to agree:\n%+v\n%+v", got, single)
	}
}

func TestRunPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int64
	var seen atomic.Int64
	runPool(context.Background(), 3, 20, func(int) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
		seen.Add(1)
	})

	if peak.Load() > 3 {
		t.Fatalf("expected at most 3 concurrent calls, got %d", peak.Load())
	}
	if seen.Load() != 20 {
		t.Fatalf("expected 20 calls, got %d", seen.Load())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	runPool(ctx, 2, 5, func(int) { called = true })
	if called {
		t.Fatalf("expected no dispatch after cancellation")
	}
}
