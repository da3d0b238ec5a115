package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts text page by page. Pages without text contribute nothing.
type PDF struct{}

type pageSource interface {
	NumPage() int
	// PageText returns the page text; ok is false when the page has no content.
	PageText(i int) (text string, ok bool, err error)
}

type pdfReader struct {
	r *pdf.Reader
}

func (p pdfReader) NumPage() int { return p.r.NumPage() }

func (p pdfReader) PageText(i int) (string, bool, error) {
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", false, nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (PDF) Extract(ctx context.Context, path string) (text string, err error) {
	// the pdf library panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("decode pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	return joinPages(ctx, pdfReader{r: r})
}

func joinPages(ctx context.Context, src pageSource) (string, error) {
	pages := make([]string, 0, src.NumPage())
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, ok, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if !ok {
			text = ""
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
