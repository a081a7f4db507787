package driving

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// ExtractRequest describes one archive traversal.
type ExtractRequest struct {
	// ArchivePath is the archive file to open.
	ArchivePath string

	// OutputDir receives the extracted files. The source folder
	// hierarchy is flattened into this one directory.
	OutputDir string

	// ExtensionFilter accepts only attachments whose filename ends with
	// this suffix, compared case-insensitively. Empty accepts all.
	ExtensionFilter string

	// NamingMode selects the output naming policy. Empty falls back to
	// the configured default.
	NamingMode domain.NamingMode
}

// ArchiveExtractor walks mounted archives and writes their attachments
// (or whole items) to disk.
type ArchiveExtractor interface {
	// ExtractAttachments mounts the archive, walks its folder tree
	// depth-first, saves every accepted attachment into OutputDir and
	// unmounts. Unmount is attempted on every exit path.
	ExtractAttachments(ctx context.Context, req ExtractRequest) (*domain.ExtractionResult, error)

	// ExtractDocuments saves whole items instead of their attachments,
	// skipping the designated trash folder. Used to turn a mailbox
	// archive into a document set.
	ExtractDocuments(ctx context.Context, req ExtractRequest) (*domain.ExtractionResult, error)
}
