// Package mailstore stores the yard's operational email records.
//
// These records are the event stream the dock monitor scans. The store
// is shared infrastructure owned by the wider HelmStream deployment;
// crisisd treats it as read-mostly.
package mailstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("mail record not found")

// CategoryOperational tags records about day-to-day yard operations.
const CategoryOperational = "operational"

// Record is one stored email event.
type Record struct {
	ID         string    `json:"id"`
	Category   string    `json:"event_category"`
	Sender     string    `json:"sender"`
	SenderRole string    `json:"sender_role"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Vessel     string    `json:"vessel_involved"`
	ReceivedAt time.Time `json:"received_at"`
}

// Store provides access to email records.
type Store interface {
	// Recent returns up to limit records in the given category, newest
	// first. The ordering reflects insertion time, not event time, and
	// callers must not treat it as authoritative.
	Recent(ctx context.Context, category string, limit int) ([]Record, error)

	// Append stores a record.
	Append(ctx context.Context, rec Record) error

	// Close releases the store.
	Close() error
}
