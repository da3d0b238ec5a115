package screening

import (
	"encoding/json"
	"testing"

	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/signals"
)

func TestRejectCarriesSentinelExperience(t *testing.T) {
	t.Parallel()

	r := Reject("cv.pdf", "Python Developer", "file too large")
	if r.Shortlisted() || r.Experience.Known {
		t.Fatalf("unexpected reject result: %+v", r)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"file":"cv.pdf","role":"Python Developer","score":0,"status":"Rejected","reasons":["file too large"],"experience":"Not mentioned"}`
	if string(data) != expected {
		t.Fatalf("expected %s, got %s", expected, data)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	r := MatchResult{File: "a", Reasons: []string{"x"}, FoundSkills: []string{"python"}, Experience: signals.YearsOf(2)}
	c := r.Clone()
	c.Reasons[0] = "changed"
	c.FoundSkills[0] = "changed"

	if r.Reasons[0] != "x" || r.FoundSkills[0] != "python" {
		t.Fatalf("clone shares backing arrays with original")
	}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	results := []MatchResult{
		{File: "a", Status: decision.Shortlisted},
		{File: "b", Status: decision.Rejected},
		{File: "c", Status: decision.Shortlisted},
	}

	shortlisted, rejected := Partition(results)
	if len(shortlisted) != 2 || shortlisted[1].File != "c" {
		t.Fatalf("unexpected shortlisted: %+v", shortlisted)
	}
	if len(rejected) != 1 || rejected[0].File != "b" {
		t.Fatalf("unexpected rejected: %+v", rejected)
	}
}
