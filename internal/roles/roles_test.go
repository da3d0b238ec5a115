package roles

import (
	"errors"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := Default()
	if got := len(r.Names()); got != 10 {
		t.Fatalf("expected 10 roles, got %d", got)
	}

	p, err := r.Get("  python developer ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Python Developer" || p.Threshold != 70 || p.MinExperience != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}

	embedded, err := r.Get("Embedded Systems Engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedded.Threshold != DefaultThreshold {
		t.Fatalf("expected default threshold, got %v", embedded.Threshold)
	}

	if _, err := r.Get("Astronaut"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	r := Default()
	p, _ := r.Get("Java Developer")
	p.Skills[0] = "cobol"

	again, _ := r.Get("Java Developer")
	if again.Skills[0] != "java" {
		t.Fatalf("registry was mutated through returned profile: %v", again.Skills)
	}
}

func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profiles []Profile
	}{
		{name: "empty name", profiles: []Profile{{Name: " "}}},
		{name: "negative experience", profiles: []Profile{{Name: "x", MinExperience: -1}}},
		{name: "threshold out of range", profiles: []Profile{{Name: "x", Threshold: 120}}},
		{name: "duplicate", profiles: []Profile{{Name: "x"}, {Name: "X"}}},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewRegistry(tt.profiles...); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestNewRegistryNormalizesSkills(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Profile{Name: "Go Developer", Skills: []string{" Go ", "go", "", "Docker"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := r.Get("go developer")
	if len(p.Skills) != 2 || p.Skills[0] != "go" || p.Skills[1] != "docker" {
		t.Fatalf("unexpected skills: %v", p.Skills)
	}
}

func TestDecodeOverrides(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"python developer": map[string]any{
			"skills":         []any{"python", "fastapi"},
			"min-experience": "3",
			"threshold":      80,
		},
		"go developer": map[string]any{
			"skills": []string{"go", "grpc"},
		},
	}

	r, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(r.Names()); got != 11 {
		t.Fatalf("expected 11 roles, got %d", got)
	}

	p, err := r.Get("Python Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Python Developer" || p.MinExperience != 3 || p.Threshold != 80 || len(p.Skills) != 2 {
		t.Fatalf("override not applied: %+v", p)
	}

	g, err := r.Get("Go Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Threshold != DefaultThreshold {
		t.Fatalf("expected default threshold, got %v", g.Threshold)
	}
}

func TestMatchLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		text     string
		expect   bool
	}{
		{location: AnyLocation, text: "anything", expect: true},
		{location: "", text: "anything", expect: true},
		{location: "Bangalore", text: "based in bengaluru, india", expect: true},
		{location: "hyderabad", text: "hyd, telangana", expect: true},
		{location: "Pune", text: "based in mumbai", expect: false},
		{location: "Berlin", text: "berlin, germany", expect: true},
	}

	for _, tt := range tests {

		tt := tt
		if got := MatchLocation(tt.text, tt.location); got != tt.expect {
			t.Fatalf("location %q on %q: expected %v, got %v", tt.location, tt.text, tt.expect, got)
		}
	}

	names := Locations()
	if names[0] != AnyLocation || len(names) != 7 {
		t.Fatalf("unexpected locations: %v", names)
	}
}
