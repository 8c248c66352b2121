// Package docks derives dock availability from recent operational mail.
//
// The monitor is a heuristic: it substring-scans a bounded window of
// records and the last matching record wins, in whatever order the
// store returned them. The result is best-effort and eventually
// consistent at best; treat it as a hint, never as authoritative
// real-time state.
package docks

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crisisd/internal/mailstore"
)

// Dock status values.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusUnavailable = "unavailable"
	StatusUnknown     = "unknown"
)

// unknownVessel is reported when an occupying record names no vessel.
const unknownVessel = "Unknown"

// Markers scanned for in subject/body text.
var (
	unavailableMarkers = []string{"unavailable", "failure"}
	occupiedMarkers    = []string{"allocated", "occupied"}
)

// State is the derived condition of a single dock.
type State struct {
	Status        string `json:"status"`
	CurrentVessel string `json:"current_vessel,omitempty"`
	NextAvailable string `json:"next_available,omitempty"`
}

// Snapshot is the derived condition of every tracked dock.
type Snapshot struct {
	Docks map[string]State `json:"docks"`

	// Analysis describes how the snapshot was produced.
	Analysis string `json:"analysis"`

	// Err carries the store failure reason when the scan could not run.
	Err string `json:"error,omitempty"`
}

// Config configures the monitor.
type Config struct {
	// Names are the docks to track (e.g. "dock 1", "dock 2").
	Names []string

	// ScanLimit bounds how many recent records are scanned (default: 10).
	ScanLimit int
}

// DefaultConfig returns the reference two-dock setup.
func DefaultConfig() *Config {
	return &Config{
		Names:     []string{"dock 1", "dock 2"},
		ScanLimit: 10,
	}
}

// Monitor derives dock status snapshots from a mail store.
type Monitor struct {
	config *Config
	store  mailstore.Store
	logger *zap.Logger
}

// NewMonitor creates a monitor over the given store.
func NewMonitor(cfg *Config, store mailstore.Store, logger *zap.Logger) *Monitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{config: cfg, store: store, logger: logger}
}

// Snapshot scans recent operational records and derives a status per
// tracked dock. Store failures degrade to StatusUnknown for every dock;
// Snapshot never returns an error.
func (m *Monitor) Snapshot(ctx context.Context) Snapshot {
	records, err := m.store.Recent(ctx, mailstore.CategoryOperational, m.config.ScanLimit)
	if err != nil {
		m.logger.Warn("dock status scan failed", zap.Error(err))
		snap := Snapshot{
			Docks:    make(map[string]State, len(m.config.Names)),
			Analysis: "Status unknown: operational records unavailable",
			Err:      err.Error(),
		}
		for _, name := range m.config.Names {
			snap.Docks[name] = State{Status: StatusUnknown}
		}
		return snap
	}

	snap := Snapshot{
		Docks:    make(map[string]State, len(m.config.Names)),
		Analysis: "Based on recent communications",
	}
	for _, name := range m.config.Names {
		snap.Docks[name] = State{Status: StatusAvailable, NextAvailable: "now"}
	}

	for _, rec := range records {
		text := strings.ToLower(rec.Subject + "\n" + rec.Body)
		for _, name := range m.config.Names {
			if !strings.Contains(text, name) {
				continue
			}
			switch {
			case containsAny(text, unavailableMarkers):
				snap.Docks[name] = State{Status: StatusUnavailable}
			case containsAny(text, occupiedMarkers):
				vessel := rec.Vessel
				if vessel == "" {
					vessel = unknownVessel
				}
				snap.Docks[name] = State{Status: StatusOccupied, CurrentVessel: vessel}
			}
		}
	}

	return snap
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
