// Package extract turns résumé documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spigell/resume-screener/internal/resume"
)

// ErrUnsupportedFormat is returned by ExtractStrict for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor converts a document into its visible text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Registry dispatches extraction by file extension.
type Registry struct {
	extractors map[resume.Format]Extractor
}

// New returns a registry with the PDF and DOCX extractors.
func New() *Registry {
	return &Registry{
		extractors: map[resume.Format]Extractor{
			resume.FormatPDF:  PDF{},
			resume.FormatDOCX: DOCX{},
		},
	}
}

// Register replaces the extractor for a format.
func (r *Registry) Register(format resume.Format, e Extractor) {
	if r.extractors == nil {
		r.extractors = make(map[resume.Format]Extractor)
	}
	r.extractors[format] = e
}

// Formats returns the registered formats in lexical order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.extractors))
	for f := range r.extractors {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)
	return formats
}

// Supported reports whether path has a registered extension.
func (r *Registry) Supported(path string) bool {
	_, ok := r.extractors[resume.Format(resume.NormalizeExt(filepath.Ext(path)))]
	return ok
}

// Extract returns the document text, or an empty string for unsupported formats.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	text, err := r.ExtractStrict(ctx, path)
	if errors.Is(err, ErrUnsupportedFormat) {
		return "", nil
	}
	return text, err
}

// ExtractStrict is Extract but reports unsupported formats as an error.
func (r *Registry) ExtractStrict(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format := resume.Format(resume.NormalizeExt(filepath.Ext(path)))
	e, ok := r.extractors[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return e.Extract(ctx, path)
}
