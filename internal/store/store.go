// Package store persists finalized screening results as candidate records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spigell/resume-screener/internal/decision"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/signals"
)

// Store accepts finalized results for durable persistence.
type Store interface {
	Save(ctx context.Context, result screening.MatchResult) error
}

// Candidate is a stored result.
type Candidate struct {
	ID         int64
	File       string
	Role       string
	Skills     []string
	Experience signals.Years
	Score      float64
	Status     decision.Status
	Reasons    []string
	CreatedAt  time.Time
}

const schema = `CREATE TABLE IF NOT EXISTS candidates (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	file       TEXT NOT NULL,
	role       TEXT NOT NULL,
	skills     TEXT NOT NULL,
	experience INTEGER,
	score      REAL NOT NULL,
	status     TEXT NOT NULL,
	reasons    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

const listSeparator = "; "

// SQLite stores candidates in an embedded database file.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLite opens or creates the candidates database at path.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open candidates database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create candidates schema: %w", err)
	}

	logger.Debug("candidates database ready", zap.String("path", path))
	return &SQLite{db: db, logger: logger, now: time.Now}, nil
}

func (s *SQLite) Save(ctx context.Context, result screening.MatchResult) error {
	var experience sql.NullInt64
	if result.Experience.Known {
		experience = sql.NullInt64{Int64: int64(result.Experience.Value), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO candidates (file, role, skills, experience, score, status, reasons, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.File,
		result.Role,
		strings.Join(result.FoundSkills, listSeparator),
		experience,
		result.Score,
		string(result.Status),
		strings.Join(result.Reasons, listSeparator),
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store candidate %s: %w", result.File, err)
	}

	s.logger.Debug("candidate stored", zap.String("file", result.File), zap.String("status", string(result.Status)))
	return nil
}

// List returns every stored candidate in insertion order.
func (s *SQLite) List(ctx context.Context) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, role, skills, experience, score, status, reasons, created_at FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var (
			c          Candidate
			skills     string
			reasons    string
			status     string
			experience sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.File, &c.Role, &skills, &experience, &c.Score, &status, &reasons, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		c.Skills = splitList(skills)
		c.Reasons = splitList(reasons)
		c.Status = decision.Status(status)
		if experience.Valid {
			c.Experience = signals.YearsOf(int(experience.Int64))
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

// SaveAll stores every result and reports all failures together.
func SaveAll(ctx context.Context, s Store, results []screening.MatchResult) error {
	var errs []error
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := s.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
