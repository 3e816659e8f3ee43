// Package history records rendered verdicts in a local SQLite database so
// operators can audit what the engine decided and why.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/moltbot/trustwatch/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	session_id      TEXT NOT NULL DEFAULT '',
	command         TEXT NOT NULL,
	trust_level     TEXT NOT NULL,
	trusted_session INTEGER NOT NULL,
	user_requested  INTEGER NOT NULL,
	recommendation  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations (created_at);
`

// Entry is one recorded evaluation.
type Entry struct {
	ID             string      `json:"id"`
	CreatedAt      time.Time   `json:"created_at"`
	SessionID      string      `json:"session_id,omitempty"`
	Command        string      `json:"command"`
	Level          model.Level `json:"trust_level"`
	TrustedSession bool        `json:"is_trusted_session"`
	UserRequested  bool        `json:"user_requested"`
	Recommendation string      `json:"recommendation"`
}

// Log is the evaluation history store.
type Log struct {
	db *sql.DB
}

// Open creates or opens the history database at path and ensures the schema.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Record appends one evaluation outcome.
func (l *Log) Record(command, sessionID string, res model.Result) error {
	_, err := l.db.Exec(
		`INSERT INTO evaluations
			(id, created_at, session_id, command, trust_level, trusted_session, user_requested, recommendation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		time.Now().UTC().Format(time.RFC3339Nano),
		sessionID,
		command,
		string(res.Level),
		boolInt(res.TrustedSession),
		boolInt(res.UserRequested),
		res.Recommendation,
	)
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

// Recent returns the newest n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, created_at, session_id, command, trust_level, trusted_session, user_requested, recommendation
		 FROM evaluations ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, level string
		var trusted, requested int
		if err := rows.Scan(&e.ID, &created, &e.SessionID, &e.Command, &level, &trusted, &requested, &e.Recommendation); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		e.Level = model.Level(level)
		e.TrustedSession = trusted != 0
		e.UserRequested = requested != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (l *Log) Close() error {
	return l.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
