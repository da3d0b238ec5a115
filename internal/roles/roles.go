// Package roles holds the role profiles résumés are screened against.
package roles

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultThreshold applies to profiles declared without a threshold.
const DefaultThreshold = 70.0

// ErrUnknownRole is returned when a role name does not resolve to a profile.
var ErrUnknownRole = errors.New("unknown role")

// Profile describes the requirements of a role.
type Profile struct {
	Name          string   `mapstructure:"name" json:"name"`
	Skills        []string `mapstructure:"skills" json:"skills"`
	MinExperience int      `mapstructure:"min-experience" json:"min_experience"`
	// Threshold is the pass score in [0, 100]. Zero means DefaultThreshold.
	Threshold     float64  `mapstructure:"threshold" json:"threshold"`
}

// Registry is an immutable, name-indexed set of profiles.
type Registry struct {
	profiles map[string]Profile
	names    []string
}

// Defaults returns the built-in role profiles.
func Defaults() []Profile {
	return []Profile{
		{Name: "Python Developer", Skills: []string{"python", "django", "flask", "sql", "git"}, MinExperience: 1, Threshold: 70},
		{Name: "Java Developer", Skills: []string{"java", "spring", "hibernate", "sql"}, MinExperience: 1, Threshold: 70},
		{Name: "Frontend Developer", Skills: []string{"html", "css", "javascript", "react"}, MinExperience: 1, Threshold: 65},
		{Name: "Data Analyst", Skills: []string{"sql", "excel", "power bi", "python"}, MinExperience: 1, Threshold: 65},
		{Name: "DevOps Engineer", Skills: []string{"docker", "kubernetes", "aws", "linux"}, MinExperience: 2, Threshold: 70},
		{Name: "AI Engineer", Skills: []string{"python", "tensorflow", "pytorch", "machine learning"}, MinExperience: 2, Threshold: 70},
		{Name: "Backend Developer", Skills: []string{"python", "django", "flask", "sql", "node.js", "git"}, MinExperience: 2, Threshold: 70},
		{Name: "Embedded Systems Engineer", Skills: []string{"c", "c++", "microcontrollers", "rtos"}, MinExperience: 2},
		{Name: "Blockchain Developer", Skills: []string{"solidity", "ethereum", "smart contracts", "web3.js"}, MinExperience: 1},
		{Name: "Full Stack Developer", Skills: []string{"html", "css", "javascript", "react", "node.js", "sql"}, MinExperience: 2, Threshold: 75},
	}
}

// NewRegistry validates and indexes the given profiles.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		p, err := normalizeProfile(p)
		if err != nil {
			return nil, err
		}

		key := strings.ToLower(p.Name)
		if _, ok := r.profiles[key]; ok {
			return nil, fmt.Errorf("duplicate role %q", p.Name)
		}
		r.profiles[key] = p
		r.names = append(r.names, p.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Default returns a registry of the built-in profiles.
func Default() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(err)
	}
	return r
}

func normalizeProfile(p Profile) (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return p, errors.New("role name is required")
	}
	if p.MinExperience < 0 {
		return p, fmt.Errorf("role %q: min experience must not be negative", p.Name)
	}
	if p.Threshold < 0 || p.Threshold > 100 {
		return p, fmt.Errorf("role %q: threshold %.2f is out of range [0, 100]", p.Name, p.Threshold)
	}
	if p.Threshold == 0 {
		p.Threshold = DefaultThreshold
	}

	seen := make(map[string]struct{}, len(p.Skills))
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		skills = append(skills, s)
	}
	p.Skills = skills

	return p, nil
}

// Get resolves a profile by case-insensitive name.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	p.Skills = append([]string(nil), p.Skills...)
	return p, nil
}

// Names returns the profile names sorted alphabetically.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Skills returns the union of all required skills.
func (r *Registry) Skills() []string {
	seen := make(map[string]struct{})
	for _, p := range r.profiles {
		for _, s := range p.Skills {
			seen[s] = struct{}{}
		}
	}
	skills := make([]string, 0, len(seen))
	for s := range seen {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

// Profiles returns a copy of every profile sorted by name.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.names))
	for _, name := range r.names {
		p, _ := r.Get(name)
		out = append(out, p)
	}
	return out
}
