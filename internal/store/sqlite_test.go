package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/crisisd/internal/planning"
	"github.com/fyrsmithlabs/crisisd/internal/workflow"
)

func newTestStore(t *testing.T) *WorkflowStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "workflows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func suspendedWorkflow(id string) *workflow.Workflow {
	w := workflow.New(id, workflow.Crisis{
		Description: "engine failure",
		Vessel:      "MV Meridian",
	})
	w.Options = []planning.Option{{Number: 1, Title: "Extend current dock stay"}}
	w.Recommended = &w.Options[0]
	w.State = workflow.StateAwaitingApproval
	w.Logf("Workflow paused. Awaiting human approval to proceed.")
	return w
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := suspendedWorkflow("wf-1")
	require.NoError(t, s.Save(ctx, w))

	got, err := s.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "MV Meridian", got.Crisis.Vessel)
	assert.Equal(t, workflow.StateAwaitingApproval, got.State)
	assert.Equal(t, workflow.ApprovalPending, got.Approval)
	require.NotNil(t, got.Recommended)
	assert.Equal(t, "Extend current dock stay", got.Recommended.Title)
	assert.Equal(t, w.Log, got.Log)
}

func TestSaveReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := suspendedWorkflow("wf-1")
	require.NoError(t, s.Save(ctx, w))

	w.Logf("Analysis complete")
	require.NoError(t, s.Save(ctx, w))

	got, err := s.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, got.Log, 2)
}

func TestGetUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestDecideOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := suspendedWorkflow("wf-1")
	require.NoError(t, s.Save(ctx, w))

	w.Approval = workflow.ApprovalApproved
	w.State = workflow.StateExecuted
	w.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.Decide(ctx, w))

	got, err := s.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.ApprovalApproved, got.Approval)
	assert.Equal(t, workflow.StateExecuted, got.State)

	// A second decision must not land.
	w.Approval = workflow.ApprovalRejected
	w.State = workflow.StateRejected
	err = s.Decide(ctx, w)
	assert.ErrorIs(t, err, workflow.ErrAlreadyDecided)

	got, err = s.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.ApprovalApproved, got.Approval)
}

func TestDecideUnknownID(t *testing.T) {
	s := newTestStore(t)

	w := suspendedWorkflow("missing")
	w.Approval = workflow.ApprovalApproved
	w.State = workflow.StateExecuted
	err := s.Decide(context.Background(), w)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestDecideConcurrentSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, suspendedWorkflow("wf-1")))

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := suspendedWorkflow("wf-1")
			if i%2 == 0 {
				w.Approval = workflow.ApprovalApproved
				w.State = workflow.StateExecuted
			} else {
				w.Approval = workflow.ApprovalRejected
				w.State = workflow.StateRejected
			}
			errs[i] = s.Decide(ctx, w)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(t, errors.Is(err, workflow.ErrAlreadyDecided))
		}
	}
	assert.Equal(t, 1, wins)

	got, err := s.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.True(t, got.Decided())
}
