// Package archive routes mount operations to the mounter that handles
// the archive file's format.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

// Ensure Selector implements the interface.
var _ driven.ArchiveMounter = (*Selector)(nil)

// Selector dispatches to format-specific mounters by filename
// extension.
type Selector struct {
	mounters map[string]driven.ArchiveMounter
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{mounters: make(map[string]driven.ArchiveMounter)}
}

// Register binds an extension, with dot, to a mounter. Later
// registrations of the same extension win.
func (s *Selector) Register(ext string, mounter driven.ArchiveMounter) {
	s.mounters[strings.ToLower(ext)] = mounter
}

// Mounted returns the union of backing file paths across all registered
// mounters.
func (s *Selector) Mounted(ctx context.Context) ([]string, error) {
	seen := make(map[driven.ArchiveMounter]bool)
	var paths []string
	for _, mounter := range s.mounters {
		if seen[mounter] {
			continue
		}
		seen[mounter] = true

		mounted, err := mounter.Mounted(ctx)
		if err != nil {
			return nil, err
		}
		paths = append(paths, mounted...)
	}
	return paths, nil
}

// Mount opens the archive with the mounter registered for its
// extension.
func (s *Selector) Mount(ctx context.Context, archivePath string) (driven.ArchiveFolder, error) {
	mounter, err := s.forPath(archivePath)
	if err != nil {
		return nil, err
	}
	return mounter.Mount(ctx, archivePath)
}

// Unmount removes the mounted store backed by archivePath.
func (s *Selector) Unmount(ctx context.Context, archivePath string) error {
	mounter, err := s.forPath(archivePath)
	if err != nil {
		return err
	}
	return mounter.Unmount(ctx, archivePath)
}

func (s *Selector) forPath(archivePath string) (driven.ArchiveMounter, error) {
	ext := strings.ToLower(filepath.Ext(archivePath))
	mounter, ok := s.mounters[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no mounter handles %s archives", domain.ErrInvalidInput, ext)
	}
	return mounter, nil
}
