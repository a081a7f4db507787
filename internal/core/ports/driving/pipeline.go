package driving

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// PipelineRequest is one end-to-end run: search, export, download,
// extract. Skip flags bypass a prefix of the stages when their work
// already happened in an earlier run.
type PipelineRequest struct {
	// Mailbox is the target mailbox scope. Required unless search is
	// skipped.
	Mailbox string

	// Query holds the search filter inputs.
	Query domain.QueryParams

	// JobName resumes an existing job instead of generating a new name.
	// Required when any stage is skipped.
	JobName string

	// ExtensionFilter restricts extraction to matching attachments.
	ExtensionFilter string

	// NamingMode selects the attachment naming policy. Empty falls back
	// to the configured default.
	NamingMode domain.NamingMode

	// BaseDir overrides the configured output base directory.
	BaseDir string

	// SkipSearch reuses JobName without creating or waiting on a search.
	SkipSearch bool

	// SkipExport assumes the export already completed. The transfer
	// descriptor is still read from the export job.
	SkipExport bool

	// SkipDownload extracts archives already present in the run
	// directory instead of downloading.
	SkipDownload bool
}

// PipelineReport summarizes a finished run.
type PipelineReport struct {
	// JobName is the search job the run operated on.
	JobName string

	// OutputDir is <base dir>/<JobName>.
	OutputDir string

	// Archives are the downloaded (or reused) archive files.
	Archives []domain.DownloadedArchive

	// Extractions holds one result per archive traversed.
	Extractions []domain.ExtractionResult
}

// PipelineRunner sequences the four stages against one mailbox. On an
// unrecoverable stage error the remaining stages are abandoned; archive
// unmounts are still attempted as cleanup.
type PipelineRunner interface {
	// Run executes the pipeline and returns a report of what was
	// produced. Errors are *domain.StageError values naming the failed
	// stage and entity.
	Run(ctx context.Context, req PipelineRequest) (*PipelineReport, error)
}
