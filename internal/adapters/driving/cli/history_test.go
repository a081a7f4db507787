package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagememory "github.com/markz0r/M365PowerKit/internal/adapters/driven/storage/memory"
	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/services"
)

// seedHistory points the history command at a store holding one
// completed and one failed run.
func seedHistory(t *testing.T) {
	t.Helper()
	store := storagememory.NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID:         "run-1",
		JobName:    "20240102T101500_finance_Budget",
		Mailbox:    "finance@example.com",
		Query:      `(received>=2024-01-01 AND subject:"Budget")`,
		OutputDir:  "/exports/20240102T101500_finance_Budget",
		Status:     domain.RunStatusCompleted,
		StartedAt:  time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 1, 2, 10, 27, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID:          "run-2",
		JobName:     "20240103T090000_finance_Invoices",
		Mailbox:     "finance@example.com",
		Status:      domain.RunStatusFailed,
		FailedStage: domain.StageDownload,
		Error:       "run transfer tool: exit status 1",
		StartedAt:   time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2024, 1, 3, 9, 5, 0, 0, time.UTC),
	}))

	historyService = services.NewHistoryService(store)
}

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history", historyCmd.Use)
}

func TestHistoryCmd_HasLimitFlag(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "20", flag.DefValue)
}

func TestHistoryCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No runs recorded.")
}

func TestHistoryCmd_ListsNewestFirst(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	seedHistory(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "failed (download)")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("run-2")), bytes.Index(buf.Bytes(), []byte("run-1")),
		"newest run should be printed first")
}

func TestHistoryCmd_Limit(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	seedHistory(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "--limit", "1"})
	defer func() {
		rootCmd.SetArgs(nil)
		historyLimit = 20
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run-2")
	assert.NotContains(t, buf.String(), "run-1")
}

func TestHistoryShowCmd_Completed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	seedHistory(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "show", "run-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ID:      run-1")
	assert.Contains(t, out, "Job:     20240102T101500_finance_Budget")
	assert.Contains(t, out, "Status:  completed")
	assert.Contains(t, out, "Mailbox: finance@example.com")
	assert.Contains(t, out, "Took:    12m0s")
	assert.NotContains(t, out, "Error:")
}

func TestHistoryShowCmd_Failed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	seedHistory(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "show", "run-2"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Status:  failed")
	assert.Contains(t, out, "Stage:   download")
	assert.Contains(t, out, "Error:   run transfer tool: exit status 1")
}

func TestHistoryShowCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history", "show", "missing-run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryCmd_ServiceNotConfigured(t *testing.T) {
	oldService := historyService
	historyService = nil
	defer func() {
		historyService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "history service not configured")
}
