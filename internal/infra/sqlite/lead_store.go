// Package sqlite stores submission records in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bonitx-quiz-service/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS test_leads (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    collection_path TEXT NOT NULL,
    email           TEXT NOT NULL,
    test_answers    TEXT NOT NULL,
    result_mode     TEXT NOT NULL,
    user_id         TEXT,
    submitted_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS test_leads_collection_path_idx ON test_leads (collection_path);
`

// LeadStore appends submission records to a local SQLite database.
type LeadStore struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*LeadStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &LeadStore{db: db}, nil
}

func (s *LeadStore) Close() error {
	return s.db.Close()
}

func (s *LeadStore) Append(ctx context.Context, collectionPath string, record domain.SubmissionRecord) error {
	answers, err := json.Marshal(record.TestAnswers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	var userID sql.NullString
	if record.UserID != nil {
		userID = sql.NullString{String: *record.UserID, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO test_leads (collection_path, email, test_answers, result_mode, user_id, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		collectionPath, record.Email, string(answers), string(record.ResultMode), userID,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// Records lists the records stored under collectionPath in insertion order.
func (s *LeadStore) Records(ctx context.Context, collectionPath string) ([]domain.SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, test_answers, result_mode, user_id, submitted_at
		 FROM test_leads WHERE collection_path = ? ORDER BY id`, collectionPath)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []domain.SubmissionRecord
	for rows.Next() {
		var (
			record    domain.SubmissionRecord
			answers   string
			mode      string
			userID    sql.NullString
			submitted string
		)
		if err := rows.Scan(&record.Email, &answers, &mode, &userID, &submitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &record.TestAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, submitted)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		record.Timestamp = ts
		record.ResultMode = domain.Mode(mode)
		if userID.Valid {
			uid := userID.String
			record.UserID = &uid
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
