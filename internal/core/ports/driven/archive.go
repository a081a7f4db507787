package driven

import (
	"context"
	"time"
)

// ArchiveMounter opens downloaded archive files through the mail
// client's automation surface. At most one mounted store may exist per
// backing file path; callers enforce this by consulting Mounted before
// Mount.
type ArchiveMounter interface {
	// Mounted returns the backing file paths of currently mounted
	// stores.
	Mounted(ctx context.Context) ([]string, error)

	// Mount opens the archive and returns its root folder.
	Mount(ctx context.Context, archivePath string) (ArchiveFolder, error)

	// Unmount removes the mounted store backed by archivePath.
	Unmount(ctx context.Context, archivePath string) error
}

// ArchiveFolder is one node of a mounted archive's folder tree. The
// tree is read-only and acyclic by construction of the source format.
type ArchiveFolder interface {
	// Name is the folder's display name.
	Name() string

	// Items streams the folder's own items in native order. The error
	// channel yields at most one error and both channels close when the
	// stream ends.
	Items(ctx context.Context) (<-chan ArchiveItem, <-chan error)

	// Folders returns the immediate child folders in native order.
	Folders(ctx context.Context) ([]ArchiveFolder, error)
}

// ArchiveItem is one message inside a folder.
type ArchiveItem interface {
	// Received is the item's received timestamp.
	Received() time.Time

	// Subject is the item's subject line.
	Subject() string

	// Attachments lists the item's attachments, possibly empty.
	Attachments(ctx context.Context) ([]ArchiveAttachment, error)

	// Extension is the filename extension, with dot, that SaveAs
	// writes, e.g. ".eml" or ".msg".
	Extension() string

	// SaveAs writes the whole item to path in the source format.
	SaveAs(ctx context.Context, path string) error
}

// ArchiveAttachment is one attachment payload.
type ArchiveAttachment interface {
	// Filename is the attachment's original filename.
	Filename() string

	// Save writes the binary payload to path.
	Save(ctx context.Context, path string) error
}
