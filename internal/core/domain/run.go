package domain

import "time"

// RunStatus is the lifecycle of one recorded pipeline run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is the local history entry for one pipeline invocation. It
// is observational only: the pipeline resumes from job names and disk
// artifacts, never from this record.
type RunRecord struct {
	// ID is a generated unique identifier.
	ID string

	// JobName is the search job the run operated on.
	JobName string

	// Mailbox is the target mailbox scope.
	Mailbox string

	// Query is the search predicate used, empty when search was skipped.
	Query string

	// OutputDir is the run's working directory under the base dir.
	OutputDir string

	// Status is the run outcome.
	Status RunStatus

	// FailedStage is set when Status is failed.
	FailedStage Stage

	// Error is the rendered failure message, empty on success.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended; zero while still running.
	FinishedAt time.Time
}

// Finished reports whether the run has ended.
func (r RunRecord) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration returns the run's elapsed time, or zero if not finished.
func (r RunRecord) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
