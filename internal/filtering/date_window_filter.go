package filtering

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/resume"
)

const day = 24 * time.Hour

// Window labels offered by the interactive mode.
var WindowLabels = []string{"All", "Last 7 Days", "Last 30 Days", "Last 90 Days"}

// ParseWindow converts "All", "Last 30 Days", "30d" or "30" into a duration.
// Zero means no restriction.
func ParseWindow(value string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" || s == "all" {
		return 0, nil
	}

	s = strings.TrimPrefix(s, "last ")
	s = strings.TrimSuffix(s, " days")
	s = strings.TrimSuffix(s, " day")
	s = strings.TrimSuffix(s, "d")

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid date window %q", value)
	}
	return time.Duration(n) * day, nil
}

type dateWindowFilter struct {
	window time.Duration
	label  string
}

// NewDateWindow creates a filter that removes files modified before the window.
func NewDateWindow() Filter {
	return &dateWindowFilter{}
}

func (f *dateWindowFilter) Name() string { return "date_window" }

func (f *dateWindowFilter) Disable(string) {}

func (f *dateWindowFilter) IsEnabled() bool { return true }

func (f *dateWindowFilter) Validate(cfg *Config) error {
	f.window, f.label = 0, ""
	if cfg == nil {
		return nil
	}
	window, err := ParseWindow(cfg.Window)
	if err != nil {
		return err
	}
	f.window, f.label = window, cfg.Window
	return nil
}

func (f *dateWindowFilter) Apply(_ context.Context, deps Deps, files *resume.Files) (*resume.Files, Step, error) {
	initial := files.Len()
	if f.window == 0 {
		return files, Step{Initial: initial, Dropped: 0, Left: files.Len()}, nil
	}

	now := deps.now()
	excluded := files.Exclude(func(file *resume.File) bool {
		// unknown age, the file is kept so screening can report why it is unusable
		if file.ModTime.IsZero() {
			return false
		}
		return now.Sub(file.ModTime) > f.window
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding files outside the date window",
			zap.String("window", f.label),
			zap.Strings("excluded_files", excluded),
			zap.Int("files_left", files.Len()),
		)
	}

	return files, Step{Initial: initial, Dropped: len(excluded), Left: files.Len()}, nil
}

func (f *dateWindowFilter) Status() Status {
	details := map[string]string{}
	if f.window > 0 {
		details["window"] = f.label
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
