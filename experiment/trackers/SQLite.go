package trackers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samuelfneumann/snakeql/experiment/tracker"
	_ "modernc.org/sqlite"
)

var _ Tracker = (*SQLite)(nil)

// SQLite tracks episodes into a SQLite database so that many training
// runs can be compared. Each run is identified by a UUID. Episodes are
// buffered in memory and written in a single transaction by Save.
type SQLite struct {
	db      *sql.DB
	runID   uuid.UUID
	pending []tracker.Episode
}

// OpenSQLite opens or creates the database at path and records a new
// run with the given ID, started now, described by config (usually
// the YAML of the experiment configuration)
func OpenSQLite(path string, runID uuid.UUID, config string) (*SQLite,
	error) {
	if path == "" {
		return nil, fmt.Errorf("openSQLite: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("openSQLite: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openSQLite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openSQLite: %w", err)
	}

	_, err = db.Exec(`INSERT INTO runs (id, started_at, config)
		VALUES (?, ?, ?)`, runID.String(),
		time.Now().UTC().Format(time.RFC3339), config)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openSQLite: record run: %w", err)
	}

	return &SQLite{db: db, runID: runID}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			config TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			phase TEXT NOT NULL,
			idx INTEGER NOT NULL,
			score INTEGER NOT NULL,
			episode_return REAL NOT NULL,
			steps INTEGER NOT NULL,
			epsilon REAL NOT NULL,
			end_type TEXT NOT NULL,
			PRIMARY KEY (run_id, phase, idx)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RunID returns the ID of the run being tracked
func (s *SQLite) RunID() uuid.UUID {
	return s.runID
}

// Track buffers a finished episode
func (s *SQLite) Track(e tracker.Episode) {
	s.pending = append(s.pending, e)
}

// Save writes all buffered episodes to the database
func (s *SQLite) Save() (err error) {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`INSERT INTO episodes
		(run_id, phase, idx, score, episode_return, steps, epsilon,
		end_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.pending {
		_, err = stmt.Exec(s.runID.String(), e.Phase, e.Index, e.Score,
			e.Return, e.Steps, e.Epsilon, e.End.String())
		if err != nil {
			return fmt.Errorf("save: episode %d: %w", e.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Scores returns the scores of all saved episodes of the run in the
// order they were played
func (s *SQLite) Scores() ([]float64, error) {
	rows, err := s.db.Query(`SELECT score FROM episodes WHERE run_id = ?
		ORDER BY rowid`, s.runID.String())
	if err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scores: %w", err)
		}
		scores = append(scores, float64(score))
	}
	return scores, rows.Err()
}

// Close saves any buffered episodes and closes the database
func (s *SQLite) Close() error {
	saveErr := s.Save()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return saveErr
}
