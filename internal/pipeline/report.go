package pipeline

import (
	"time"

	"github.com/spigell/resume-screener/internal/screening"
)

// Stats counts how files left the pipeline.
type Stats struct {
	Total        int           `json:"total"`
	Completed    int           `json:"completed"`
	Cached       int           `json:"cached"`
	FastRejected int           `json:"fast_rejected"`
	Evaluated    int           `json:"evaluated"`
	Failed       int           `json:"failed"`
	Shortlisted  int           `json:"shortlisted"`
	Rejected     int           `json:"rejected"`
	Duration     time.Duration `json:"duration"`
}

// Report is the outcome of one run. Results follow the input order; a
// canceled run only holds the files that finished.
type Report struct {
	Role      string                  `json:"role"`
	Threshold float64                 `json:"threshold"`
	Location  string                  `json:"location,omitempty"`
	Results   []screening.MatchResult `json:"results"`
	Stats     Stats                   `json:"stats"`
}

func (r *Report) Shortlisted() []screening.MatchResult {
	shortlisted, _ := screening.Partition(r.Results)
	return shortlisted
}

func (r *Report) Rejected() []screening.MatchResult {
	_, rejected := screening.Partition(r.Results)
	return rejected
}
