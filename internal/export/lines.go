package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spigell/resume-screener/internal/screening"
)

// Lines prints one "file → Status | Score: N" line per result.
func Lines(w io.Writer, results []screening.MatchResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s → %s | Score: %s\n", r.File, r.Status, strconv.FormatFloat(r.Score, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}
