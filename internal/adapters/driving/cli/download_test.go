package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

func TestDownloadCmd_Use(t *testing.T) {
	assert.Equal(t, "download [job-name]", downloadCmd.Use)
}

func TestDownloadCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"download"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDownloadCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	exportService = &stubExportCoordinator{
		descriptor: &domain.TransferDescriptor{
			JobName:         "test-job_Export",
			LocationURI:     "https://blob.example.com/export",
			CredentialToken: "?sig=abc",
		},
	}

	baseDir := t.TempDir()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"download", "test-job", "--base-dir", baseDir})
	defer func() {
		rootCmd.SetArgs(nil)
		downloadBaseDir = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Downloaded 1 archive(s)")
	assert.FileExists(t, filepath.Join(baseDir, "test-job", "test-job_Export-export.mbox"))
}

func TestDownloadCmd_AcceptsExportName(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	exportService = &stubExportCoordinator{
		descriptor: &domain.TransferDescriptor{
			JobName:         "test-job_Export",
			LocationURI:     "https://blob.example.com/export",
			CredentialToken: "?sig=abc",
		},
	}

	baseDir := t.TempDir()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"download", "test-job_Export", "--base-dir", baseDir})
	defer func() {
		rootCmd.SetArgs(nil)
		downloadBaseDir = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(baseDir, "test-job"))
}

func TestDownloadCmd_NoBaseDir(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"download", "test-job"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no base directory configured")
}

func TestDownloadCmd_DestinationNotEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	exportService = &stubExportCoordinator{
		descriptor: &domain.TransferDescriptor{
			JobName:         "test-job_Export",
			LocationURI:     "https://blob.example.com/export",
			CredentialToken: "?sig=abc",
		},
	}

	baseDir := t.TempDir()
	destDir := filepath.Join(baseDir, "test-job")
	require.NoError(t, os.MkdirAll(destDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(destDir, "leftover.pst"), []byte("x"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"download", "test-job", "--base-dir", baseDir})
	defer func() {
		rootCmd.SetArgs(nil)
		downloadBaseDir = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDestNotEmpty)
}

func TestDownloadCmd_WaitError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	exportService = &stubExportCoordinator{err: domain.ErrJobFailed}

	baseDir := t.TempDir()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"download", "test-job", "--base-dir", baseDir})
	defer func() {
		rootCmd.SetArgs(nil)
		downloadBaseDir = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wait for transfer descriptor")
}
