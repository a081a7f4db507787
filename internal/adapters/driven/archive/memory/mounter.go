// Package memory provides an in-memory archive implementation. It backs
// tests and local development where no mail client is available.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

// Ensure Mounter implements the interface.
var _ driven.ArchiveMounter = (*Mounter)(nil)

// Mounter is an in-memory implementation of driven.ArchiveMounter.
// Trees are registered against archive paths up front; Mount hands out
// the registered root.
type Mounter struct {
	// MountErr, UnmountErr and MountedErr are returned verbatim when
	// set, for failure-path tests.
	MountErr   error
	UnmountErr error
	MountedErr error

	mu       sync.Mutex
	trees    map[string]*Folder
	active   map[string]bool
	mounts   int
	unmounts int
}

// NewMounter creates a new in-memory mounter.
func NewMounter() *Mounter {
	return &Mounter{
		trees:  make(map[string]*Folder),
		active: make(map[string]bool),
	}
}

// Register associates an archive path with a folder tree. The path may
// be mounted immediately afterwards.
func (m *Mounter) Register(archivePath string, root *Folder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees[key(archivePath)] = root
}

// PreMount marks an archive as already mounted, simulating a stale
// mount left behind by an earlier run.
func (m *Mounter) PreMount(archivePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[key(archivePath)] = true
}

// Mounted returns the backing file paths of currently mounted stores.
func (m *Mounter) Mounted(_ context.Context) ([]string, error) {
	if m.MountedErr != nil {
		return nil, m.MountedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for path := range m.active {
		paths = append(paths, path)
	}
	return paths, nil
}

// Mount opens a registered archive and returns its root folder.
func (m *Mounter) Mount(_ context.Context, archivePath string) (driven.ArchiveFolder, error) {
	if m.MountErr != nil {
		return nil, m.MountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.trees[key(archivePath)]
	if !ok {
		return nil, fmt.Errorf("archive %s: %w", archivePath, domain.ErrNotFound)
	}
	m.active[key(archivePath)] = true
	m.mounts++
	return root, nil
}

// Unmount removes the mounted store backed by archivePath.
func (m *Mounter) Unmount(_ context.Context, archivePath string) error {
	if m.UnmountErr != nil {
		return m.UnmountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active[key(archivePath)] {
		return fmt.Errorf("archive %s not mounted: %w", archivePath, domain.ErrNotFound)
	}
	delete(m.active, key(archivePath))
	m.unmounts++
	return nil
}

// IsMounted reports whether archivePath currently has a mounted store.
func (m *Mounter) IsMounted(archivePath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[key(archivePath)]
}

// Counts returns how many mounts and unmounts have happened.
func (m *Mounter) Counts() (mounts, unmounts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounts, m.unmounts
}

func key(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// Folder is an in-memory archive folder node.
type Folder struct {
	// FolderName is the display name.
	FolderName string

	// FolderItems are the folder's own items, in order.
	FolderItems []*Item

	// Children are the child folders, in order.
	Children []*Folder

	// ItemsErr ends the item stream with an error when set.
	ItemsErr error

	// ChildErr fails Folders when set.
	ChildErr error
}

var _ driven.ArchiveFolder = (*Folder)(nil)

// Name is the folder's display name.
func (f *Folder) Name() string {
	return f.FolderName
}

// Items streams the folder's items in declaration order.
func (f *Folder) Items(ctx context.Context) (<-chan driven.ArchiveItem, <-chan error) {
	items := make(chan driven.ArchiveItem)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)
		for _, item := range f.FolderItems {
			select {
			case items <- item:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if f.ItemsErr != nil {
			errs <- f.ItemsErr
		}
	}()

	return items, errs
}

// Folders returns the immediate child folders.
func (f *Folder) Folders(_ context.Context) ([]driven.ArchiveFolder, error) {
	if f.ChildErr != nil {
		return nil, f.ChildErr
	}
	children := make([]driven.ArchiveFolder, len(f.Children))
	for i, child := range f.Children {
		children[i] = child
	}
	return children, nil
}

// Item is an in-memory archive item.
type Item struct {
	// ReceivedAt is the received timestamp.
	ReceivedAt time.Time

	// ItemSubject is the subject line.
	ItemSubject string

	// ItemAttachments are the attachments, possibly empty.
	ItemAttachments []*Attachment

	// Body is written by SaveAs.
	Body string

	// AttachErr fails Attachments when set.
	AttachErr error

	// SaveErr fails SaveAs when set.
	SaveErr error
}

var _ driven.ArchiveItem = (*Item)(nil)

// Received is the item's received timestamp.
func (i *Item) Received() time.Time {
	return i.ReceivedAt
}

// Subject is the item's subject line.
func (i *Item) Subject() string {
	return i.ItemSubject
}

// Attachments lists the item's attachments.
func (i *Item) Attachments(_ context.Context) ([]driven.ArchiveAttachment, error) {
	if i.AttachErr != nil {
		return nil, i.AttachErr
	}
	attachments := make([]driven.ArchiveAttachment, len(i.ItemAttachments))
	for idx, attachment := range i.ItemAttachments {
		attachments[idx] = attachment
	}
	return attachments, nil
}

// Extension is the format SaveAs writes.
func (i *Item) Extension() string {
	return ".eml"
}

// SaveAs writes the item's body to path.
func (i *Item) SaveAs(_ context.Context, path string) error {
	if i.SaveErr != nil {
		return i.SaveErr
	}
	content := fmt.Sprintf("Subject: %s\nDate: %s\n\n%s\n",
		i.ItemSubject, i.ReceivedAt.Format(time.RFC1123Z), i.Body)
	return os.WriteFile(path, []byte(content), 0o644)
}

// Attachment is an in-memory attachment payload.
type Attachment struct {
	// Name is the original filename.
	Name string

	// Data is the binary payload.
	Data []byte

	// SaveErr fails Save when set.
	SaveErr error
}

var _ driven.ArchiveAttachment = (*Attachment)(nil)

// Filename is the attachment's original filename.
func (a *Attachment) Filename() string {
	return a.Name
}

// Save writes the payload to path.
func (a *Attachment) Save(_ context.Context, path string) error {
	if a.SaveErr != nil {
		return a.SaveErr
	}
	return os.WriteFile(path, a.Data, 0o644)
}
