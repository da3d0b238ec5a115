// Package screening defines the result record produced for every résumé.
package screening

import (
	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/signals"
)

// MatchResult is the decision record for one résumé. It is the unit that is
// cached, stored and reported.
type MatchResult struct {
	File           string          `json:"file"`
	Role           string          `json:"role,omitempty"`
	Score          float64         `json:"score"`
	Status         decision.Status `json:"status"`
	Reasons        []string        `json:"reasons"`
	FoundSkills    []string        `json:"found_skills,omitempty"`
	MissingSkills  []string        `json:"missing_skills,omitempty"`
	Experience     signals.Years   `json:"experience"`
	ExperienceText string          `json:"experience_text,omitempty"`
	Certifications []string        `json:"certifications,omitempty"`
	Objective      string          `json:"objective,omitempty"`
	Projects       []string        `json:"projects,omitempty"`
}

// Reject builds a rejected result that carries only reasons.
func Reject(file, role string, reasons ...string) MatchResult {
	return MatchResult{
		File:       file,
		Role:       role,
		Status:     decision.Rejected,
		Reasons:    reasons,
		Experience: signals.NotMentioned,
	}
}

// Shortlisted reports whether the result passed screening.
func (r MatchResult) Shortlisted() bool {
	return r.Status == decision.Shortlisted
}

// Clone returns a deep copy.
func (r MatchResult) Clone() MatchResult {
	r.Reasons = cloneStrings(r.Reasons)
	r.FoundSkills = cloneStrings(r.FoundSkills)
	r.MissingSkills = cloneStrings(r.MissingSkills)
	r.Certifications = cloneStrings(r.Certifications)
	r.Projects = cloneStrings(r.Projects)
	return r
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// Partition splits results into shortlisted and rejected, keeping order.
func Partition(results []MatchResult) (shortlisted, rejected []MatchResult) {
	for _, r := range results {
		if r.Shortlisted() {
			shortlisted = append(shortlisted, r)
			continue
		}
		rejected = append(rejected, r)
	}
	return shortlisted, rejected
}
