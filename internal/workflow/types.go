// Package workflow orchestrates the crisis-response pipeline.
//
// A workflow moves through a fixed phase sequence up to a mandatory
// human-approval gate, then suspends. A later decision call resumes it
// into execution or rejection. The safety invariant: no action is ever
// executed unless the workflow's approval state is explicitly approved,
// and each crisis takes at most one terminal decision.
package workflow

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/crisisd/internal/docks"
	"github.com/fyrsmithlabs/crisisd/internal/drafting"
	"github.com/fyrsmithlabs/crisisd/internal/lookup"
	"github.com/fyrsmithlabs/crisisd/internal/planning"
)

// State is a workflow's position in the phase sequence.
type State string

const (
	StateCreated          State = "created"
	StateAnalyzed         State = "analyzed"
	StateOptionsGenerated State = "options_generated"
	StateRecommended      State = "recommended"
	StateDrafted          State = "drafted"
	StateAwaitingApproval State = "awaiting_approval"
	StateExecuted         State = "executed"
	StateRejected         State = "rejected"
)

// Approval is the human decision state gating execution.
type Approval string

const (
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
	ApprovalRejected Approval = "rejected"
)

// Crisis is the immutable input to one workflow.
type Crisis struct {
	Description string    `json:"crisis_description"`
	Vessel      string    `json:"vessel_name"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Action records one executed step. Actions are created only during the
// execution phase, after approval.
type Action struct {
	Description string `json:"description"`
}

// Workflow is the mutable aggregate threaded through the phases. It is
// owned by a single invocation; cross-invocation access goes through
// the Store.
type Workflow struct {
	ID     string `json:"id"`
	Crisis Crisis `json:"crisis"`

	Context lookup.Result  `json:"context"`
	Docks   docks.Snapshot `json:"dock_status"`

	Options       []planning.Option `json:"options"`
	Recommended   *planning.Option  `json:"recommended_option,omitempty"`
	Justification string            `json:"justification,omitempty"`

	Emails  []drafting.Message `json:"stakeholder_emails"`
	Actions []Action           `json:"actions_taken"`

	State    State    `json:"state"`
	Approval Approval `json:"approval_status"`

	// Log is append-only progress messages, never reordered or
	// truncated.
	Log []string `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a workflow for a crisis in its initial state.
func New(id string, crisis Crisis) *Workflow {
	now := time.Now().UTC()
	if crisis.DetectedAt.IsZero() {
		crisis.DetectedAt = now
	}
	return &Workflow{
		ID:        id,
		Crisis:    crisis,
		State:     StateCreated,
		Approval:  ApprovalPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Logf appends a formatted progress message.
func (w *Workflow) Logf(format string, args ...any) {
	w.Log = append(w.Log, fmt.Sprintf(format, args...))
}

// Decided reports whether the workflow has taken its terminal decision.
func (w *Workflow) Decided() bool {
	return w.Approval != ApprovalPending
}
