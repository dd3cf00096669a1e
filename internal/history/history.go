// Package history provides SQLite-backed persistence of output statements
// and recorded metrics, consumed only by cmd/wodctl's "history" subcommand.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/antigravity-dev/wodcore/internal/metrics"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// Store provides SQLite-backed persistence for session output and metrics.
type Store struct {
	db *sql.DB
}

// Session is a replayed script run.
type Session struct {
	ID        int64
	Source    string
	StartedAt time.Time
}

// OutputRow is a persisted runtime.OutputStatement with its session id.
type OutputRow struct {
	ID        int64
	SessionID int64
	Type      string
	Message   string
	BlockType string
	Label     string
	RecordedAt time.Time
}

// MetricRow is a persisted metrics.Entry with its session id.
type MetricRow struct {
	ID         int64
	SessionID  int64
	ExerciseID string
	Reps       uint32
	ResistanceKG float64
	DistanceM  float64
	DurationMS uint64
	SourceIDs  string
	RecordedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	started_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS outputs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL,
	type TEXT NOT NULL,
	message TEXT NOT NULL,
	block_type TEXT NOT NULL DEFAULT '',
	label TEXT NOT NULL DEFAULT '',
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS metric_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL,
	exercise_id TEXT NOT NULL DEFAULT '',
	reps INTEGER NOT NULL DEFAULT 0,
	resistance_kg REAL NOT NULL DEFAULT 0,
	distance_m REAL NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	source_ids TEXT NOT NULL DEFAULT '[]',
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Open opens (creating if absent) a SQLite-backed history store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// StartSession records a new session and returns its id.
func (s *Store) StartSession(source string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO sessions (source) VALUES (?)`, source)
	if err != nil {
		return 0, fmt.Errorf("history: start session: %w", err)
	}
	return res.LastInsertId()
}

// RecordOutput persists stmt under sessionID.
func (s *Store) RecordOutput(sessionID int64, stmt runtime.OutputStatement) error {
	_, err := s.db.Exec(
		`INSERT INTO outputs (session_id, type, message, block_type, label) VALUES (?, ?, ?, ?, ?)`,
		sessionID, stmt.Type.String(), stmt.Message, stmt.BlockType, stmt.Label,
	)
	if err != nil {
		return fmt.Errorf("history: record output: %w", err)
	}
	return nil
}

// RecordMetric persists entry under sessionID.
func (s *Store) RecordMetric(sessionID int64, entry metrics.Entry) error {
	ids, err := json.Marshal(entry.SourceIDs)
	if err != nil {
		return fmt.Errorf("history: marshal source ids: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO metric_entries (session_id, exercise_id, reps, resistance_kg, distance_m, duration_ms, source_ids, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, entry.ExerciseID, entry.Reps, entry.ResistanceKG, entry.DistanceM, entry.DurationMS, string(ids), entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("history: record metric: %w", err)
	}
	return nil
}

// MetricsForSession returns every metric row recorded under sessionID, oldest first.
func (s *Store) MetricsForSession(sessionID int64) ([]MetricRow, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, exercise_id, reps, resistance_kg, distance_m, duration_ms, source_ids, recorded_at
		 FROM metric_entries WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: query metrics: %w", err)
	}
	defer rows.Close()

	var out []MetricRow
	for rows.Next() {
		var r MetricRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ExerciseID, &r.Reps, &r.ResistanceKG, &r.DistanceM, &r.DurationMS, &r.SourceIDs, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan metric row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// OutputsForSession returns every output row recorded under sessionID, oldest first.
func (s *Store) OutputsForSession(sessionID int64) ([]OutputRow, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, type, message, block_type, label, recorded_at
		 FROM outputs WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: query outputs: %w", err)
	}
	defer rows.Close()

	var out []OutputRow
	for rows.Next() {
		var r OutputRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Type, &r.Message, &r.BlockType, &r.Label, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan output row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentSessions returns the last limit sessions, most recent first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	rows, err := s.db.Query(`SELECT id, source, started_at FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Source, &sess.StartedAt); err != nil {
			return nil, fmt.Errorf("history: scan session row: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
