package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSink appends events to a feedback_events table. It never reads them back.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) a SQLite database at dbPath and ensures the
// feedback_events table exists.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS feedback_events (
		id                       INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id                   TEXT NOT NULL,
		rating                   INTEGER NOT NULL,
		comment                  TEXT,
		interview_mode           TEXT,
		job_description_length   INTEGER,
		candidate_profile_length INTEGER,
		score                    INTEGER,
		job_category             TEXT,
		elapsed_seconds          REAL,
		recorded_at              DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating feedback_events table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Write(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO feedback_events (
		run_id, rating, comment, interview_mode, job_description_length,
		candidate_profile_length, score, job_category, elapsed_seconds, recorded_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RunID,
		event.Rating,
		event.Comment,
		event.Mode,
		event.JobDescriptionLength,
		event.CandidateProfileLength,
		event.Score,
		event.JobCategory,
		event.ElapsedSeconds,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting feedback for run %s: %w", event.RunID, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
