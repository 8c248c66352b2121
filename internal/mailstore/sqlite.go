package mailstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS mail_records (
	id TEXT PRIMARY KEY,
	event_category TEXT NOT NULL,
	sender TEXT NOT NULL DEFAULT '',
	sender_role TEXT NOT NULL DEFAULT '',
	subject TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	vessel_involved TEXT NOT NULL DEFAULT '',
	received_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mail_records_category ON mail_records(event_category, received_at DESC);
`

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the mail record store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mail store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring mail store schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an existing database handle. The schema must
// already exist; use OpenSQLite unless the handle is shared.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensuring mail store schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Recent returns up to limit records in category, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, category string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_category, sender, sender_role, subject, body, vessel_involved, received_at
		 FROM mail_records WHERE event_category = ? ORDER BY received_at DESC LIMIT ?`,
		category, limit)
	if err != nil {
		return nil, fmt.Errorf("querying mail records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Category, &rec.Sender, &rec.SenderRole,
			&rec.Subject, &rec.Body, &rec.Vessel, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scanning mail record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Append stores a record, assigning an ID and timestamp when missing.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mail_records(id, event_category, sender, sender_role, subject, body, vessel_involved, received_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Category, rec.Sender, rec.SenderRole, rec.Subject, rec.Body, rec.Vessel, rec.ReceivedAt)
	if err != nil {
		return fmt.Errorf("inserting mail record: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
