// Package inbox collects résumé attachments from mail messages stored on disk.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/resume"
)

// Fetched is the outcome of one fetch: how many messages were inspected and
// the local paths of the saved résumés.
type Fetched struct {
	Checked int
	Files   []string
}

// Fetcher downloads at most max résumé attachments.
type Fetcher interface {
	Fetch(ctx context.Context, max int) (Fetched, error)
}

// MaildirFetcher reads messages from a directory of .eml files or a Maildir
// (its new and cur subdirectories), newest first.
type MaildirFetcher struct {
	source string
	dest   string
	logger *zap.Logger
	name   func(original string) string
}

func NewMaildirFetcher(source, dest string, logger *zap.Logger) *MaildirFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaildirFetcher{
		source: source,
		dest:   dest,
		logger: logger,
		name: func(original string) string {
			return uuid.NewString() + "_" + original
		},
	}
}

type message struct {
	path    string
	modTime time.Time
}

func (f *MaildirFetcher) Fetch(ctx context.Context, max int) (Fetched, error) {
	var out Fetched
	if max <= 0 {
		return out, nil
	}

	messages, err := f.list()
	if err != nil {
		return out, err
	}

	if err := os.MkdirAll(f.dest, 0o755); err != nil {
		return out, fmt.Errorf("failed to create %s: %w", f.dest, err)
	}

	for _, m := range messages {
		if len(out.Files) >= max {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		out.Checked++
		saved, err := f.collect(m.path, max-len(out.Files))
		if err != nil {
			f.logger.Warn("skipping unreadable message", zap.String("message", filepath.Base(m.path)), zap.Error(err))
		}
		out.Files = append(out.Files, saved...)
	}

	f.logger.Info("inbox fetched",
		zap.Int("checked", out.Checked),
		zap.Int("downloaded", len(out.Files)),
	)

	return out, nil
}

func (f *MaildirFetcher) list() ([]message, error) {
	dirs := []string{f.source, filepath.Join(f.source, "new"), filepath.Join(f.source, "cur")}

	var messages []message
	for i, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if i > 0 && os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read mailbox %s: %w", dir, err)
		}

		for _, e := range entries {
			if e.IsDir() || resume.IsHidden(e.Name()) {
				continue
			}
			// the top-level directory may hold unrelated files, Maildir subdirectories do not
			if i == 0 && !strings.EqualFold(filepath.Ext(e.Name()), ".eml") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			messages = append(messages, message{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].modTime.Equal(messages[j].modTime) {
			return messages[i].modTime.After(messages[j].modTime)
		}
		return messages[i].path > messages[j].path
	})

	return messages, nil
}

// collect saves up to limit supported attachments of one message.
func (f *MaildirFetcher) collect(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env, err := enmime.ReadEnvelope(file)
	if err != nil {
		return nil, err
	}

	var saved []string
	for _, part := range attachments(env) {
		if len(saved) >= limit {
			break
		}
		name, ok := attachmentName(part.FileName)
		if !ok {
			continue
		}

		target := filepath.Join(f.dest, f.name(name))
		if err := os.WriteFile(target, part.Content, 0o644); err != nil {
			f.logger.Warn("failed to save attachment", zap.String("attachment", name), zap.Error(err))
			continue
		}
		saved = append(saved, target)
	}

	return saved, nil
}

// attachments returns attachment, inline and other parts, in that order.
func attachments(env *enmime.Envelope) []*enmime.Part {
	parts := make([]*enmime.Part, 0, len(env.Attachments)+len(env.Inlines)+len(env.OtherParts))
	parts = append(parts, env.Attachments...)
	parts = append(parts, env.Inlines...)
	parts = append(parts, env.OtherParts...)
	return parts
}

// attachmentName returns the cleaned file name of a supported attachment.
func attachmentName(name string) (string, bool) {
	name = strings.NewReplacer("\r", "", "\n", "").Replace(name)
	name = strings.TrimSpace(filepath.Base(filepath.Clean("/" + name)))
	if name == "" || name == "/" || name == "." {
		return "", false
	}

	if _, ok := resume.FormatOf(name); !ok {
		return "", false
	}
	return name, true
}
