// Package store persists workflows in SQLite.
//
// The workflow body is stored as a JSON blob; id, vessel, state and
// approval are lifted into columns for querying and for the
// conditional-update gate. The Decide update only matches rows whose
// approval is still pending, which is what serializes concurrent
// decisions on one crisis: exactly one writer flips the row.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fyrsmithlabs/crisisd/internal/workflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS workflows (
	id TEXT PRIMARY KEY,
	vessel TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	approval TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workflows_vessel ON workflows(vessel);
CREATE INDEX IF NOT EXISTS idx_workflows_approval ON workflows(approval);
`

// WorkflowStore is a workflow.Store backed by SQLite.
type WorkflowStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the workflow store at path.
func Open(path string) (*WorkflowStore, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening workflow store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring workflow store schema: %w", err)
	}
	return &WorkflowStore{db: db}, nil
}

// DB exposes the underlying handle so other stores can share the file.
func (s *WorkflowStore) DB() *sql.DB {
	return s.db
}

// Save inserts or replaces the workflow row.
func (s *WorkflowStore) Save(ctx context.Context, w *workflow.Workflow) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workflow: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows(id, vessel, state, approval, payload, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			approval = excluded.approval,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		w.ID, w.Crisis.Vessel, string(w.State), string(w.Approval), string(payload), w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving workflow %s: %w", w.ID, err)
	}
	return nil
}

// Get returns the workflow for id.
func (s *WorkflowStore) Get(ctx context.Context, id string) (*workflow.Workflow, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM workflows WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading workflow %s: %w", id, err)
	}

	var w workflow.Workflow
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, fmt.Errorf("decoding workflow %s: %w", id, err)
	}
	return &w, nil
}

// Decide applies a terminal decision. The update matches only while the
// stored approval is pending, so at most one decision ever lands.
func (s *WorkflowStore) Decide(ctx context.Context, w *workflow.Workflow) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workflow: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE workflows SET state = ?, approval = ?, payload = ?, updated_at = ?
		 WHERE id = ? AND approval = ?`,
		string(w.State), string(w.Approval), string(payload), w.UpdatedAt,
		w.ID, string(workflow.ApprovalPending))
	if err != nil {
		return fmt.Errorf("deciding workflow %s: %w", w.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deciding workflow %s: %w", w.ID, err)
	}
	if affected == 1 {
		return nil
	}

	// No pending row matched: unknown ID or a decision already landed.
	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM workflows WHERE id = ?`, w.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deciding workflow %s: %w", w.ID, err)
	}
	return workflow.ErrAlreadyDecided
}

// Close closes the underlying database.
func (s *WorkflowStore) Close() error {
	return s.db.Close()
}
