// Package history keeps a per-packages-directory audit log of deployment
// operations in SQLite. The log is informational: the descriptor records and
// the current pointer remain the source of truth, and a history write
// failure never fails the operation that produced it.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    occurred_at TIMESTAMP NOT NULL,
    action TEXT NOT NULL,
    package TEXT NOT NULL,
    version TEXT,
    directory_name TEXT,
    outcome TEXT NOT NULL,
    detail TEXT
);

CREATE INDEX IF NOT EXISTS idx_events_occurred ON events(occurred_at);
CREATE INDEX IF NOT EXISTS idx_events_package ON events(package);
`

// Outcomes recorded per event.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Event is one recorded deployment operation.
type Event struct {
	ID            int64
	OccurredAt    time.Time
	Action        string // install, use, uninstall, clean-item
	Package       string
	Version       string
	DirectoryName string
	Outcome       string
	Detail        string
}

// Log wraps the SQLite event database for one packages directory.
type Log struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the history database at dbPath.
// Use ":memory:" in tests.
func Open(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite allows one writer at a time; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Append records one event.
func (l *Log) Append(e *Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	query := `
		INSERT INTO events (occurred_at, action, package, version, directory_name, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := l.db.Exec(query,
		e.OccurredAt.UTC().Format(time.RFC3339),
		e.Action,
		e.Package,
		e.Version,
		e.DirectoryName,
		e.Outcome,
		e.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to append history event: %w", err)
	}
	return nil
}

// Recent returns the newest events, most recent first. limit <= 0 returns
// everything.
func (l *Log) Recent(limit int) ([]*Event, error) {
	query := `
		SELECT id, occurred_at, action, package, version, directory_name, outcome, detail
		FROM events
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var occurredAt string
		if err := rows.Scan(&e.ID, &occurredAt, &e.Action, &e.Package, &e.Version,
			&e.DirectoryName, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}
		e.OccurredAt, err = time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history events: %w", err)
	}

	return events, nil
}
