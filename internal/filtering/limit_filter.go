package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/resume"
)

type limitFilter struct {
	max int
}

// NewLimit creates a filter that keeps at most the configured number of files.
func NewLimit() Filter {
	return &limitFilter{}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Disable(string) {}

func (f *limitFilter) IsEnabled() bool { return true }

func (f *limitFilter) Validate(cfg *Config) error {
	f.max = 0
	if cfg == nil {
		return nil
	}
	if cfg.MaxFiles < 0 {
		return fmt.Errorf("max files must not be negative, got %d", cfg.MaxFiles)
	}
	f.max = cfg.MaxFiles
	return nil
}

func (f *limitFilter) Apply(_ context.Context, deps Deps, files *resume.Files) (*resume.Files, Step, error) {
	initial := files.Len()
	dropped := files.Truncate(f.max)

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("limiting number of files",
			zap.Int("max_files", f.max),
			zap.Int("dropped", len(dropped)),
		)
	}

	return files, Step{Initial: initial, Dropped: len(dropped), Left: files.Len()}, nil
}

func (f *limitFilter) Status() Status {
	details := map[string]string{}
	if f.max > 0 {
		details["max_files"] = strconv.Itoa(f.max)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
