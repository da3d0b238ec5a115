package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format is a supported résumé document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// SupportedFormats lists formats the screener can read.
var SupportedFormats = []Format{FormatPDF, FormatDOCX}

// File describes a résumé document on the local filesystem.
type File struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Format  Format    `json:"format"`
}

// Files is an ordered collection of résumé documents.
type Files struct {
	Items []*File
}

// FormatOf returns the format inferred from the file extension.
func FormatOf(path string) (Format, bool) {
	ext := NormalizeExt(filepath.Ext(path))
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

// NormalizeExt lowercases an extension and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Stat builds a File from the path metadata. The content is not read.
func Stat(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	format, _ := FormatOf(path)
	return &File{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Format:  format,
	}, nil
}

func (f *Files) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Items)
}

func (f *Files) Paths() []string {
	paths := make([]string, 0, f.Len())
	for _, item := range f.Items {
		paths = append(paths, item.Path)
	}
	return paths
}

func (f *Files) Names() []string {
	names := make([]string, 0, f.Len())
	for _, item := range f.Items {
		names = append(names, item.Name)
	}
	return names
}

// Exclude removes every file matching drop and returns the removed names.
func (f *Files) Exclude(drop func(*File) bool) []string {
	kept := make([]*File, 0, len(f.Items))
	excluded := make([]string, 0)
	for _, item := range f.Items {
		if drop(item) {
			excluded = append(excluded, item.Name)
			continue
		}
		kept = append(kept, item)
	}
	f.Items = kept
	return excluded
}

// Truncate keeps at most n files. n <= 0 keeps everything.
func (f *Files) Truncate(n int) []string {
	if n <= 0 || len(f.Items) <= n {
		return nil
	}
	dropped := make([]string, 0, len(f.Items)-n)
	for _, item := range f.Items[n:] {
		dropped = append(dropped, item.Name)
	}
	f.Items = f.Items[:n]
	return dropped
}
