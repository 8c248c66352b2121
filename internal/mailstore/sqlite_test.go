package mailstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "mail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, subject := range []string{"dock 1 allocated", "crane maintenance", "dock 2 failure"} {
		require.NoError(t, store.Append(ctx, Record{
			Category:   CategoryOperational,
			Subject:    subject,
			Body:       "details",
			Vessel:     "MV Baltic Trader",
			ReceivedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.Append(ctx, Record{
		Category: "commercial",
		Subject:  "invoice",
	}))

	records, err := store.Recent(ctx, CategoryOperational, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "dock 2 failure", records[0].Subject)
	assert.Equal(t, "dock 1 allocated", records[2].Subject)
	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, CategoryOperational, rec.Category)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, store.Append(ctx, Record{
			Category: CategoryOperational,
			Subject:  "status update",
		}))
	}

	records, err := store.Recent(ctx, CategoryOperational, 10)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}

func TestRecentEmptyCategory(t *testing.T) {
	store := openTestStore(t)

	records, err := store.Recent(context.Background(), CategoryOperational, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
