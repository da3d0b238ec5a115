package filtering

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/resume"
)

type extensionFilter struct {
	disabled bool
	reason   string
	formats  map[string]struct{}
}

// NewExtension creates a filter that removes files with unsupported extensions.
func NewExtension() Filter {
	return &extensionFilter{}
}

func (f *extensionFilter) Name() string { return "extension" }

func (f *extensionFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *extensionFilter) IsEnabled() bool { return !f.disabled }

func (f *extensionFilter) Validate(cfg *Config) error {
	f.formats = make(map[string]struct{})
	if cfg != nil {
		for _, format := range cfg.Formats {
			if format = resume.NormalizeExt(format); format != "" {
				f.formats[format] = struct{}{}
			}
		}
	}
	if len(f.formats) == 0 {
		for _, format := range resume.SupportedFormats {
			f.formats[string(format)] = struct{}{}
		}
	}
	return nil
}

func (f *extensionFilter) Apply(_ context.Context, deps Deps, files *resume.Files) (*resume.Files, Step, error) {
	initial := files.Len()
	excluded := files.Exclude(func(file *resume.File) bool {
		_, ok := f.formats[resume.NormalizeExt(filepath.Ext(file.Name))]
		return !ok
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding files with unsupported extensions",
			zap.Strings("excluded_files", excluded),
			zap.Int("files_left", files.Len()),
		)
	}

	return files, Step{Initial: initial, Dropped: len(excluded), Left: files.Len()}, nil
}

func (f *extensionFilter) Status() Status {
	formats := make([]string, 0, len(f.formats))
	for format := range f.formats {
		formats = append(formats, format)
	}
	details := map[string]string{}
	if len(formats) > 0 {
		details["formats"] = strings.Join(sortedCopy(formats), ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
