package signals

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minValidYear = 1950

	notMentioned = "Not mentioned"

	explainEmpty   = "Resume text empty"
	explainAbsent  = "No experience date ranges found in resume."
	explainInvalid = "No valid experience date ranges found in resume."
	explainFound   = "Experience calculated using year ranges found in resume. Maximum continuous experience identified: %d years."
)

var yearRange = regexp.MustCompile(`\b(\d{4})\s*-\s*(\d{4}\b|present\b|current\b)`)

// Years is a number of years of experience or the "not mentioned" sentinel.
// The zero value is the sentinel.
type Years struct {
	Value int
	Known bool
}

// NotMentioned is the sentinel for résumés without a valid year range.
var NotMentioned = Years{}

// YearsOf returns a known number of years.
func YearsOf(n int) Years {
	return Years{Value: n, Known: true}
}

func (y Years) String() string {
	if !y.Known {
		return notMentioned
	}
	return strconv.Itoa(y.Value)
}

func (y Years) MarshalJSON() ([]byte, error) {
	if !y.Known {
		return json.Marshal(notMentioned)
	}
	return json.Marshal(y.Value)
}

func (y *Years) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = YearsOf(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("experience must be a number or %q: %w", notMentioned, err)
	}
	*y = NotMentioned
	return nil
}

// Experience is the mined tenure with a human-readable explanation.
type Experience struct {
	Years       Years
	Explanation string
}

// MineExperience finds "YYYY - YYYY" and "YYYY - present|current" ranges and
// returns the longest valid span. Ranges outside 1950..currentYear or ending
// before they start are ignored.
func MineExperience(text string, now time.Time) Experience {
	if strings.TrimSpace(text) == "" {
		return Experience{Years: NotMentioned, Explanation: explainEmpty}
	}

	current := now.Year()
	matches := yearRange.FindAllStringSubmatch(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return Experience{Years: NotMentioned, Explanation: explainAbsent}
	}

	best, found := 0, false
	for _, m := range matches {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		end := current
		if m[2] != "present" && m[2] != "current" {
			if end, err = strconv.Atoi(m[2]); err != nil {
				continue
			}
		}

		if start < minValidYear || start > end || end > current {
			continue
		}

		if span := end - start; !found || span > best {
			best, found = span, true
		}
	}

	if !found {
		return Experience{Years: NotMentioned, Explanation: explainInvalid}
	}

	return Experience{Years: YearsOf(best), Explanation: fmt.Sprintf(explainFound, best)}
}
