// Package journal keeps a local SQLite log of what runs did: applications
// sent, replies, deleted negotiations and blacklisted employers.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Kind classifies an entry.
type Kind string

// Entry kinds.
const (
	KindApplied     Kind = "applied"
	KindReplied     Kind = "replied"
	KindDeleted     Kind = "deleted"
	KindBlacklisted Kind = "blacklisted"
	KindBlocked     Kind = "blocked"
)

// Kinds returns every entry kind.
func Kinds() []Kind {
	return []Kind{KindApplied, KindReplied, KindDeleted, KindBlacklisted, KindBlocked}
}

// ErrInvalidKind indicates an unknown entry kind.
var ErrInvalidKind = errors.New("invalid journal kind")

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidKind)
}

// Entry is one journaled action.
type Entry struct {
	ID            int64
	At            time.Time
	Kind          Kind
	VacancyID     string
	NegotiationID string
	EmployerID    string
	Title         string
	Detail        string
}

// Journal is an open journal database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating when needed) the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil { // #nosec G301 -- user data dir
		return nil, fmt.Errorf("cannot create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=15000;`,
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			kind TEXT NOT NULL,
			vacancy_id TEXT NOT NULL DEFAULT '',
			negotiation_id TEXT NOT NULL DEFAULT '',
			employer_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind);`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migration: %w", err)
		}
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends e. A zero At is set to now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (at, kind, vacancy_id, negotiation_id, employer_id, title, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.At.UTC().Format(time.RFC3339Nano), string(e.Kind),
		e.VacancyID, e.NegotiationID, e.EmployerID, e.Title, e.Detail)
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Kind, err)
	}
	return nil
}

// Query filters List. A zero Kind matches every kind; Limit <= 0 means no
// limit.
type Query struct {
	Kind  Kind
	Limit int
}

// List returns entries, newest first.
func (j *Journal) List(ctx context.Context, q Query) ([]Entry, error) {
	stmt := `SELECT id, at, kind, vacancy_id, negotiation_id, employer_id, title, detail FROM entries`
	var args []any
	if q.Kind != "" {
		stmt += ` WHERE kind = ?`
		args = append(args, string(q.Kind))
	}
	stmt += ` ORDER BY id DESC`
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			at   string
			kind string
		)
		if err := rows.Scan(&e.ID, &at, &kind, &e.VacancyID, &e.NegotiationID, &e.EmployerID, &e.Title, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Kind = Kind(kind)
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("journal entry %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Counts returns the number of entries per kind.
func (j *Journal) Counts(ctx context.Context) (map[Kind]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM entries GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		out[Kind(kind)] = n
	}
	return out, rows.Err()
}
