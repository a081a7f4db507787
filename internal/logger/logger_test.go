package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects logger output into a buffer for one test and
// restores the defaults afterwards.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

// TestVerboseToggle tests that IsVerbose follows SetVerbose.
func TestVerboseToggle(t *testing.T) {
	capture(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

// TestLevels_Format tests each level's prefix and printf expansion.
func TestLevels_Format(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{
			"debug poll cycle",
			func() { Debug("Search %s status: %s", "20240101T090000_finance", "Running") },
			"[DEBUG] Search 20240101T090000_finance status: Running\n",
		},
		{
			"info checkpoint",
			func() { Info("Downloaded %d archive(s)", 2) },
			"[INFO] Downloaded 2 archive(s)\n",
		},
		{
			"warn transient failure",
			func() { Warn("Could not normalize permissions on %s", "/srv/exports") },
			"[WARN] Could not normalize permissions on /srv/exports\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			SetVerbose(true)

			tt.log()

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// TestQuiet_SuppressesEverything tests that nothing is written while
// verbose mode is off.
func TestQuiet_SuppressesEverything(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("Archive %s: mounted", "job.pst")
	Info("Extracted %d file(s)", 3)
	Warn("Unmount after failed traversal")
	Section("Extract job.pst")

	assert.Zero(t, buf.Len())
}

// TestSection_Header tests the stage-header framing.
func TestSection_Header(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Extract 20240101T090000_finance-report.pst")

	assert.Equal(t, "\n=== Extract 20240101T090000_finance-report.pst ===\n", buf.String())
}

// TestConcurrentLogging tests that poll loops and the transfer watcher
// can log from separate goroutines without racing.
func TestConcurrentLogging(t *testing.T) {
	capture(t)
	SetVerbose(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("Transfer tool still running (pid %d)", n)
			Info("Archive appearing: part%d.pst", n)
			IsVerbose()
		}(i)
	}
	wg.Wait()
}
