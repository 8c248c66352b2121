package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w := New("wf-1", Crisis{Description: "fire", Vessel: "MV Test"})
	w.Logf("step one")
	require.NoError(t, store.Save(ctx, w))

	got, err := store.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "MV Test", got.Crisis.Vessel)
	assert.Equal(t, []string{"step one"}, got.Log)

	// The stored copy is isolated from later mutation.
	w.Logf("after save")
	got2, err := store.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, got2.Log, 1)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDecideOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w := New("wf-1", Crisis{})
	w.State = StateAwaitingApproval
	require.NoError(t, store.Save(ctx, w))

	w.Approval = ApprovalApproved
	w.State = StateExecuted
	require.NoError(t, store.Decide(ctx, w))

	// A second terminal decision loses.
	w.Approval = ApprovalRejected
	assert.ErrorIs(t, store.Decide(ctx, w), ErrAlreadyDecided)

	got, err := store.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, got.Approval)
}

func TestMemoryStoreDecideMissing(t *testing.T) {
	store := NewMemoryStore()

	w := New("ghost", Crisis{})
	w.Approval = ApprovalApproved
	assert.ErrorIs(t, store.Decide(context.Background(), w), ErrNotFound)
}

func TestMemoryStoreConcurrentDecideSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w := New("wf-race", Crisis{})
	w.State = StateAwaitingApproval
	require.NoError(t, store.Save(ctx, w))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decided := New("wf-race", Crisis{})
			if i%2 == 0 {
				decided.Approval = ApprovalApproved
			} else {
				decided.Approval = ApprovalRejected
			}
			errs[i] = store.Decide(ctx, decided)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyDecided)
		}
	}
	assert.Equal(t, 1, winners, "exactly one decision takes effect")
}
