package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// Ensure TransferService implements the interface.
var _ driving.TransferService = (*TransferService)(nil)

// TransferService downloads export archives to local disk via the
// external transfer tool.
type TransferService struct {
	tool driven.TransferTool
}

// NewTransferService creates a new transfer service.
func NewTransferService(tool driven.TransferTool) *TransferService {
	return &TransferService{tool: tool}
}

// Download runs the transfer tool against the descriptor's location and
// returns the archives it produced. Archives already present in destDir
// abort the download before the tool starts; runs must not silently mix
// their output.
func (s *TransferService) Download(ctx context.Context, descriptor domain.TransferDescriptor, destDir string) ([]domain.DownloadedArchive, error) {
	// 1. Resolve the tool before touching the destination
	if err := s.tool.Check(); err != nil {
		return nil, fmt.Errorf("check transfer tool: %w", err)
	}

	// 2. Prepare the destination
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", destDir, err)
	}
	normalizePermissions(destDir)

	existing, err := findArchives(destDir)
	if err != nil {
		return nil, fmt.Errorf("scan destination %s: %w", destDir, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s holds %d archive file(s), clean it first",
			domain.ErrDestNotEmpty, destDir, len(existing))
	}

	// 3. Run the tool to completion
	logger.Info("Downloading %s to %s", descriptor.JobName, destDir)
	if err := s.tool.Run(ctx, descriptor, destDir); err != nil {
		return nil, fmt.Errorf("run transfer tool: %w", err)
	}

	// 4. The output directory is the only failure signal the tool gives us
	normalizePermissions(destDir)
	produced, err := findArchives(destDir)
	if err != nil {
		return nil, fmt.Errorf("scan destination %s: %w", destDir, err)
	}
	if len(produced) == 0 {
		return nil, fmt.Errorf("transfer tool exited without output: %w", domain.ErrNoArchives)
	}

	// 5. Prefix every archive with the job identity
	archives := make([]domain.DownloadedArchive, 0, len(produced))
	for _, path := range produced {
		archive, err := renameWithJobPrefix(path, descriptor.JobName)
		if err != nil {
			return nil, err
		}
		archives = append(archives, archive)
	}

	logger.Info("Downloaded %d archive(s)", len(archives))
	return archives, nil
}

// findArchives walks dir recursively and returns archive file paths in
// walk order.
func findArchives(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && domain.IsArchiveFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// renameWithJobPrefix renames the archive in place to
// <jobName>-<originalName>. Already-prefixed files are left untouched.
func renameWithJobPrefix(path, jobName string) (domain.DownloadedArchive, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	archive := domain.DownloadedArchive{
		Path:         path,
		OriginalName: base,
		JobName:      jobName,
	}

	if !strings.HasPrefix(base, jobName+"-") {
		renamed := filepath.Join(dir, jobName+"-"+base)
		if err := os.Rename(path, renamed); err != nil {
			return domain.DownloadedArchive{}, fmt.Errorf("rename archive %s: %w", base, err)
		}
		logger.Debug("Renamed %s to %s", base, filepath.Base(renamed))
		archive.Path = renamed
	}

	if info, err := os.Stat(archive.Path); err == nil {
		archive.Size = info.Size()
	}
	return archive, nil
}

// normalizePermissions grants full access on dir so a later stage
// running under a different account context can still open the files.
func normalizePermissions(dir string) {
	if err := os.Chmod(dir, 0o777); err != nil {
		logger.Warn("Could not normalize permissions on %s: %v", dir, err)
	}
}
