// Package decision turns a score into a shortlist decision with reasons.
package decision

import (
	"strings"

	"github.com/spigell/resume-screener/internal/signals"
)

// Status is the outcome of screening a résumé.
type Status string

const (
	Shortlisted Status = "Shortlisted"
	Rejected    Status = "Rejected"
)

const (
	ReasonBelowThreshold   = "score below threshold"
	ReasonInsufficientExp  = "insufficient experience"
	ReasonMissingSkills    = "missing required skills"
	ReasonMeetsRequirement = "meets role requirements"
)

// Input holds everything a decision depends on.
type Input struct {
	Score         float64
	Threshold     float64
	Experience    signals.Years
	MinExperience int
	Required      []string
	Found         []string
	// Strict enables the experience and missing-skills checks.
	Strict        bool
}

// Decision is a status with its reasons.
type Decision struct {
	Status  Status
	Reasons []string
}

// Decide applies the threshold and, in strict mode, the secondary checks.
// Each failing check adds its reason; a passing résumé gets a single
// affirmative reason.
func Decide(in Input) Decision {
	reasons := make([]string, 0, 3)

	if in.Score < in.Threshold {
		reasons = append(reasons, ReasonBelowThreshold)
	}

	if in.Strict {
		if in.MinExperience > 0 && (!in.Experience.Known || in.Experience.Value < in.MinExperience) {
			reasons = append(reasons, ReasonInsufficientExp)
		}
		if hasMissing(in.Required, in.Found) {
			reasons = append(reasons, ReasonMissingSkills)
		}
	}

	if len(reasons) == 0 {
		return Decision{Status: Shortlisted, Reasons: []string{ReasonMeetsRequirement}}
	}
	return Decision{Status: Rejected, Reasons: reasons}
}

// Verdict is the threshold-only decision.
func Verdict(score, threshold float64) Status {
	if score >= threshold {
		return Shortlisted
	}
	return Rejected
}

func hasMissing(required, found []string) bool {
	have := make(map[string]struct{}, len(found))
	for _, s := range found {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range required {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := have[s]; !ok {
			return true
		}
	}
	return false
}
