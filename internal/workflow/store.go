package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned when no workflow exists for an ID.
	ErrNotFound = errors.New("workflow not found")

	// ErrAlreadyDecided is returned when a decision races another: the
	// stored workflow already left the pending approval state. At most
	// one terminal decision takes effect per crisis.
	ErrAlreadyDecided = errors.New("workflow already decided")
)

// Store persists workflows across invocations. The suspension at the
// approval gate is a pause across separate calls, so the state built by
// analysis must survive until the decision call arrives.
type Store interface {
	// Save inserts or replaces a workflow that has not yet been decided.
	Save(ctx context.Context, w *Workflow) error

	// Get returns the workflow for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Workflow, error)

	// Decide atomically applies a terminal decision: it replaces the
	// stored workflow only while the stored approval state is still
	// pending. Returns ErrAlreadyDecided otherwise and ErrNotFound for
	// unknown IDs. This is the single-writer guarantee on the gate.
	Decide(ctx context.Context, w *Workflow) error

	// Close releases the store.
	Close() error
}

// MemoryStore is an in-process Store. Used in tests and demos;
// production deployments use the SQLite store.
type MemoryStore struct {
	mu        sync.Mutex
	workflows map[string][]byte
	approvals map[string]Approval
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows: make(map[string][]byte),
		approvals: make(map[string]Approval),
	}
}

// Save stores a snapshot of w.
func (s *MemoryStore) Save(ctx context.Context, w *Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workflow: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[w.ID] = data
	s.approvals[w.ID] = w.Approval
	return nil
}

// Get returns a copy of the stored workflow.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Workflow, error) {
	s.mu.Lock()
	data, ok := s.workflows[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding workflow: %w", err)
	}
	return &w, nil
}

// Decide applies the terminal decision while the stored approval is
// still pending.
func (s *MemoryStore) Decide(ctx context.Context, w *Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workflow: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.approvals[w.ID]
	if !ok {
		return ErrNotFound
	}
	if stored != ApprovalPending {
		return ErrAlreadyDecided
	}

	s.workflows[w.ID] = data
	s.approvals[w.ID] = w.Approval
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
