package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available
	// on this platform or build.
	ErrNotImplemented = errors.New("not implemented")

	// Validation errors. These fail fast, before any remote call.

	// ErrInvalidDateFormat indicates a start date that is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("start date must be YYYY-MM-DD")

	// ErrInvalidDayCount indicates a lookback that is not a positive integer.
	ErrInvalidDayCount = errors.New("day count must be a positive integer")

	// ErrConflictingDateArgs indicates both a start date and a day count
	// were supplied; exactly one may be given.
	ErrConflictingDateArgs = errors.New("start date and day count are mutually exclusive")

	// ErrMissingMailbox indicates no target mailbox was supplied.
	ErrMissingMailbox = errors.New("mailbox is required")

	// ErrMissingJobName indicates a stage was skipped without supplying
	// the job identity needed to resume.
	ErrMissingJobName = errors.New("job name is required when earlier stages are skipped")

	// Precondition violations. Fatal, no retry.

	// ErrDestNotEmpty indicates archive files already exist in the
	// download destination. The caller must clean the directory first.
	ErrDestNotEmpty = errors.New("destination already contains archive files")

	// ErrToolNotFound indicates the external transfer executable is missing.
	ErrToolNotFound = errors.New("transfer tool executable not found")

	// ErrNoArchives indicates no archive files were found where the
	// pipeline expected them.
	ErrNoArchives = errors.New("no archive files found")

	// Wait failures.

	// ErrWaitTimeout indicates a poll loop exceeded its deadline.
	ErrWaitTimeout = errors.New("wait deadline exceeded")

	// ErrJobFailed indicates the remote service reported a terminal
	// failure for the job being waited on.
	ErrJobFailed = errors.New("remote job reported failure")

	// ErrNoTransferDescriptor indicates the export results text does not
	// (yet) carry the transfer location and credential markers.
	ErrNoTransferDescriptor = errors.New("results contain no transfer descriptor")
)

// Stage identifies a pipeline stage for error reporting.
type Stage string

// Pipeline stages in execution order.
const (
	StageValidate Stage = "validate"
	StageSearch   Stage = "search"
	StageExport   Stage = "export"
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
)

// StageError reports which stage failed and which identifying name
// (job, archive file, folder or attachment) was in progress.
type StageError struct {
	// Stage is the pipeline stage that failed.
	Stage Stage

	// Name identifies the entity being processed when the failure occurred.
	Name string

	// Err is the underlying cause.
	Err error
}

func (e *StageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage (%s): %v", e.Stage, e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the failing stage and entity name.
func NewStageError(stage Stage, name string, err error) *StageError {
	return &StageError{Stage: stage, Name: name, Err: err}
}
