//go:build !windows

// Package outlook mounts pst archives through the desktop mail
// client's COM automation interface.
// This is a stub for non-Windows builds; use the mbox mounter there.
package outlook

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

// Ensure Mounter implements the interface.
var _ driven.ArchiveMounter = (*Mounter)(nil)

// Mounter attaches pst files as stores of a running Outlook instance.
type Mounter struct{}

// NewMounter creates a new Outlook mounter.
func NewMounter() *Mounter {
	return &Mounter{}
}

// Mounted returns the backing file paths of currently attached stores.
// The stub never has any, so mount listings stay usable on platforms
// where only other mounters work.
func (m *Mounter) Mounted(_ context.Context) ([]string, error) {
	return nil, nil
}

// Mount attaches the pst file as a store and returns its root folder.
func (m *Mounter) Mount(_ context.Context, _ string) (driven.ArchiveFolder, error) {
	return nil, domain.ErrNotImplemented
}

// Unmount detaches the store backed by archivePath.
func (m *Mounter) Unmount(_ context.Context, _ string) error {
	return domain.ErrNotImplemented
}

// Close releases the COM session.
func (m *Mounter) Close() error {
	return nil
}
