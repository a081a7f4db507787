package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// testRun returns a finished run record with distinct field values.
func testRun(id string, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:         id,
		JobName:    "20240102T101500_finance_Budget",
		Mailbox:    "finance@example.com",
		Query:      `subject:"Budget Report"`,
		OutputDir:  "/data/runs/20240102T101500_finance_Budget",
		Status:     domain.RunStatusCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(12 * time.Minute),
	}
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "history.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// Invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	store1, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store1.Save(context.Background(), testRun("run-1", time.Now().UTC())))
	require.NoError(t, store1.Close())

	// Reopening must not rerun or break the schema
	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	runs, err := store2.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)
	run := testRun("run-1", started)
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.JobName, got.JobName)
	assert.Equal(t, run.Mailbox, got.Mailbox)
	assert.Equal(t, run.Query, got.Query)
	assert.Equal(t, run.OutputDir, got.OutputDir)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.FinishedAt.Equal(started.Add(12*time.Minute)))
	assert.Equal(t, 12*time.Minute, got.Duration())
}

func TestStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Save_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)
	run := testRun("run-1", started)
	run.Status = domain.RunStatusRunning
	run.FinishedAt = time.Time{}
	require.NoError(t, store.Save(ctx, run))

	// Unfinished runs keep a zero FinishedAt
	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, got.Status)
	assert.False(t, got.Finished())

	// Finish the run and save again under the same ID
	run.Status = domain.RunStatusFailed
	run.FailedStage = domain.StageDownload
	run.Error = "transfer tool: exit status 1"
	run.FinishedAt = started.Add(3 * time.Minute)
	require.NoError(t, store.Save(ctx, run))

	got, err = store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, got.Status)
	assert.Equal(t, domain.StageDownload, got.FailedStage)
	assert.Equal(t, "transfer tool: exit status 1", got.Error)
	assert.Equal(t, 3*time.Minute, got.Duration())

	// Still a single record
	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_List_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		run := testRun(id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Save(ctx, run))
	}

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)
	assert.Equal(t, "run-1", runs[2].ID)
}

func TestStore_List_Limit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.Save(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)
}

func TestStore_List_Empty(t *testing.T) {
	store := setupTestStore(t)

	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	store1, err := NewStore(tempDir)
	require.NoError(t, err)

	started := time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)
	require.NoError(t, store1.Save(ctx, testRun("run-1", started)))
	require.NoError(t, store1.Close())

	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "20240102T101500_finance_Budget", got.JobName)
	assert.True(t, got.StartedAt.Equal(started))
}
