// Package scoring computes the 70/30 skill and experience match score.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-screener/internal/roles"
	"github.com/spigell/resume-screener/internal/signals"
)

const (
	SkillWeight      = 70.0
	ExperienceWeight = 30.0
	// MaxBonus caps the optional signal bonus so skills and experience stay dominant.
	MaxBonus = 10.0
)

// Result is a score with its components.
type Result struct {
	Total      float64
	Skill      float64
	Experience float64
	Bonus      float64
	// Matched and Missing partition the required skills, in required order.
	Matched    []string
	Missing    []string
}

// Score combines found skills and experience against the requirements.
func Score(found, required []string, years signals.Years, minExperience int) Result {
	matched, missing := partition(found, required)

	r := Result{
		Matched:    matched,
		Missing:    missing,
		Skill:      skillScore(len(matched), len(matched)+len(missing)),
		Experience: experienceScore(years, minExperience),
	}
	r.Total = round2(r.Skill + r.Experience)
	return r
}

func skillScore(matched, required int) float64 {
	if required == 0 {
		return 0
	}
	return float64(matched) * SkillWeight / float64(required)
}

func experienceScore(years signals.Years, minExperience int) float64 {
	if !years.Known {
		return 0
	}
	if years.Value >= minExperience {
		return ExperienceWeight
	}
	if years.Value <= 0 {
		return 0
	}
	return float64(years.Value) * ExperienceWeight / float64(minExperience)
}

func partition(found, required []string) ([]string, []string) {
	have := make(map[string]struct{}, len(found))
	for _, s := range found {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(required))
	matched := make([]string, 0, len(required))
	missing := make([]string, 0)
	for _, s := range required {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}

		if _, ok := have[s]; ok {
			matched = append(matched, s)
			continue
		}
		missing = append(missing, s)
	}
	return matched, missing
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Bonus assigns extra points for secondary signals. The sum must not exceed MaxBonus.
type Bonus struct {
	Certifications float64 `mapstructure:"certifications"`
	Projects       float64 `mapstructure:"projects"`
	Objective      float64 `mapstructure:"objective"`
}

func (b Bonus) Validate() error {
	for name, v := range map[string]float64{
		"certifications": b.Certifications,
		"projects":       b.Projects,
		"objective":      b.Objective,
	} {
		if v < 0 {
			return fmt.Errorf("bonus %s must not be negative", name)
		}
	}
	if sum := b.Certifications + b.Projects + b.Objective; sum > MaxBonus {
		return fmt.Errorf("bonus total %.2f exceeds %.0f", sum, MaxBonus)
	}
	return nil
}

// Scorer scores full signals against a profile, optionally with a bonus.
type Scorer struct {
	Bonus Bonus
}

// Score returns the base score plus the bonus for present secondary signals, capped at 100.
func (s Scorer) Score(sig signals.Signals, profile roles.Profile) Result {
	r := Score(sig.Skills, profile.Skills, sig.Experience.Years, profile.MinExperience)

	if len(sig.Certifications) > 0 {
		r.Bonus += s.Bonus.Certifications
	}
	if len(sig.Projects) > 0 {
		r.Bonus += s.Bonus.Projects
	}
	if strings.TrimSpace(sig.Objective) != "" {
		r.Bonus += s.Bonus.Objective
	}

	r.Total = round2(math.Min(100, r.Skill+r.Experience+r.Bonus))
	return r
}
