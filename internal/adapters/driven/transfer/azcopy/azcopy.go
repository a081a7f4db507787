// Package azcopy launches the external transfer tool that downloads
// export archives from blob storage to local disk.
package azcopy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// DefaultLivenessInterval is how often the child process and its
// partially written archives are inspected while waiting.
const DefaultLivenessInterval = 5 * time.Second

// Ensure Tool implements the interface.
var _ driven.TransferTool = (*Tool)(nil)

// Tool runs the transfer executable as a child process. The core
// observes only process liveness and the archive files appearing in the
// destination directory; the tool's own output is discarded, never
// parsed.
type Tool struct {
	path     string
	interval time.Duration
}

// New creates a launcher for the executable at path. An empty path
// resolves "azcopy" from PATH.
func New(path string) *Tool {
	return NewWithInterval(path, DefaultLivenessInterval)
}

// NewWithInterval creates a launcher with a custom liveness interval.
func NewWithInterval(path string, interval time.Duration) *Tool {
	if path == "" {
		path = "azcopy"
	}
	if interval <= 0 {
		interval = DefaultLivenessInterval
	}
	return &Tool{path: path, interval: interval}
}

// Check verifies the executable can be resolved.
func (t *Tool) Check() error {
	if _, err := exec.LookPath(t.path); err != nil {
		return fmt.Errorf("%s: %w", t.path, domain.ErrToolNotFound)
	}
	return nil
}

// Run launches the tool against the descriptor's location and blocks
// until the process exits. Every liveness interval the destination is
// scanned and the size of any partially downloaded archive is logged.
func (t *Tool) Run(ctx context.Context, descriptor domain.TransferDescriptor, destDir string) error {
	cmd := exec.CommandContext(ctx, t.path,
		"-name", descriptor.JobName,
		"-source", descriptor.LocationURI,
		"-key", descriptor.CredentialToken,
		"-dest", destDir,
		"-trace", "true",
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", t.path, err)
	}
	logger.Info("Transfer tool started (pid %d)", cmd.Process.Pid)

	stopWatch := t.watchArrivals(destDir)
	defer stopWatch()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return fmt.Errorf("transfer tool: %w", err)
			}
			logger.Info("Transfer tool finished")
			return nil
		case <-ticker.C:
			logger.Debug("Transfer tool still running (pid %d)", cmd.Process.Pid)
			t.logPartials(destDir)
		}
	}
}

// watchArrivals logs archive files as they appear in destDir. The
// returned stop function releases the watcher; when watching is
// unavailable the liveness scan still covers progress.
func (t *Tool) watchArrivals(destDir string) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("Directory watch unavailable: %v", err)
		return func() {}
	}
	if err := watcher.Add(destDir); err != nil {
		logger.Warn("Watch %s: %v", destDir, err)
		watcher.Close() //nolint:errcheck,gosec // already on the error path
		return func() {}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) && domain.IsArchiveFile(event.Name) {
					logger.Info("Archive appearing: %s", filepath.Base(event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Directory watch: %v", err)
			}
		}
	}()

	return func() {
		watcher.Close() //nolint:errcheck,gosec // shutdown path
	}
}

// logPartials reports the current size of every archive file under dir.
func (t *Tool) logPartials(dir string) {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() || !domain.IsArchiveFile(path) {
			return nil //nolint:nilerr // a vanishing partial file is not an error
		}
		if info, statErr := os.Stat(path); statErr == nil {
			logger.Debug("  %s: %d bytes so far", filepath.Base(path), info.Size())
		}
		return nil
	})
	if err != nil {
		logger.Warn("Scan %s: %v", dir, err)
	}
}
