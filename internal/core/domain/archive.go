package domain

import (
	"path/filepath"
	"strings"
)

// ArchiveState tracks one archive file through extraction. Legal flow:
// Closed -> Mounted -> Traversing -> Extracted or Failed -> Closed.
// Mounted is entered only from Closed; Closed is always reachable again
// via unmount regardless of which terminal state traversal hit.
type ArchiveState string

// Archive lifecycle states.
const (
	ArchiveClosed     ArchiveState = "closed"
	ArchiveMounted    ArchiveState = "mounted"
	ArchiveTraversing ArchiveState = "traversing"
	ArchiveExtracted  ArchiveState = "extracted"
	ArchiveFailed     ArchiveState = "failed"
)

// IsArchiveFile reports whether name looks like a mailbox archive the
// transfer tool produces.
func IsArchiveFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pst", ".mbox":
		return true
	default:
		return false
	}
}

// DownloadedArchive is one archive file produced by the transfer tool,
// after the post-download rename.
type DownloadedArchive struct {
	// Path is the absolute path of the renamed archive file.
	Path string

	// OriginalName is the base name the transfer tool wrote, before the
	// job-name prefix was applied.
	OriginalName string

	// JobName is the search job the archive belongs to.
	JobName string

	// Size is the file size in bytes at rename time.
	Size int64
}
