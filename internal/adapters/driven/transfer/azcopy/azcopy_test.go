package azcopy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// writeToolScript writes a shell script standing in for the transfer
// executable. The destination directory arrives as $8.
func writeToolScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("transfer tool tests use shell scripts")
	}
	path := filepath.Join(t.TempDir(), "azcopy-stub.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func testDesc() domain.TransferDescriptor {
	return domain.TransferDescriptor{
		JobName:         "20240102T101500_finance_Budget_Export",
		LocationURI:     "https://blob.example.com/container",
		CredentialToken: "?sv=2023&sig=abc",
	}
}

// TestTool_Check tests executable resolution.
func TestTool_Check(t *testing.T) {
	path := writeToolScript(t, "exit 0\n")

	assert.NoError(t, NewWithInterval(path, time.Second).Check())

	err := New("definitely-not-a-real-tool-xyz").Check()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

// TestTool_Run_PassesContract tests the exact argument sequence handed
// to the child process.
func TestTool_Run_PassesContract(t *testing.T) {
	path := writeToolScript(t, `printf '%s\n' "$@" > "$8/args.txt"
echo data > "$8/result.pst"
exit 0
`)
	destDir := t.TempDir()
	tool := NewWithInterval(path, time.Second)

	err := tool.Run(context.Background(), testDesc(), destDir)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(destDir, "args.txt"))
	require.NoError(t, err)
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, []string{
		"-name", "20240102T101500_finance_Budget_Export",
		"-source", "https://blob.example.com/container",
		"-key", "?sv=2023&sig=abc",
		"-dest", destDir,
		"-trace", "true",
	}, args)
	assert.FileExists(t, filepath.Join(destDir, "result.pst"))
}

// TestTool_Run_ExitFailure tests that a non-zero exit comes back as an
// error.
func TestTool_Run_ExitFailure(t *testing.T) {
	path := writeToolScript(t, "exit 3\n")
	tool := NewWithInterval(path, time.Second)

	err := tool.Run(context.Background(), testDesc(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer tool")
}

// TestTool_Run_ContextCancelled tests that cancellation kills the child
// process instead of waiting for it.
func TestTool_Run_ContextCancelled(t *testing.T) {
	path := writeToolScript(t, "sleep 30\n")
	tool := NewWithInterval(path, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tool.Run(ctx, testDesc(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// TestTool_Run_LogsPartialSizes tests that the liveness scan reports
// growing archive files while the process runs.
func TestTool_Run_LogsPartialSizes(t *testing.T) {
	path := writeToolScript(t, `echo partial > "$8/result.pst"
sleep 1
exit 0
`)
	destDir := t.TempDir()
	tool := NewWithInterval(path, 100*time.Millisecond)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	defer func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	}()

	err := tool.Run(context.Background(), testDesc(), destDir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "result.pst")
	assert.Contains(t, buf.String(), "bytes so far")
}

// TestTool_Run_StartFailure tests the error when the executable cannot
// be launched at all.
func TestTool_Run_StartFailure(t *testing.T) {
	tool := NewWithInterval(filepath.Join(t.TempDir(), "missing"), time.Second)

	err := tool.Run(context.Background(), testDesc(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}
