package domain

// ExtractionResult summarizes one archive traversal. Counters cover the
// whole tree; Files lists the names written into the output directory
// in traversal order.
type ExtractionResult struct {
	// ArchivePath is the archive file the result describes.
	ArchivePath string

	// OutputDir received the extracted attachment files.
	OutputDir string

	// FoldersVisited counts folders walked, including the root.
	FoldersVisited int

	// ItemsScanned counts items inspected for attachments.
	ItemsScanned int

	// AttachmentsSaved counts files written to OutputDir.
	AttachmentsSaved int

	// AttachmentsFiltered counts attachments rejected by the extension
	// filter.
	AttachmentsFiltered int

	// Files are the output filenames written, relative to OutputDir.
	Files []string
}
