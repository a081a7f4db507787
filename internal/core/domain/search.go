package domain

import (
	"strings"
	"time"
)

// JobStatus is the closed set of states the remote service reports for
// search and export jobs. The service owns these values; the pipeline
// only ever reads them and matches on the literal "Completed".
type JobStatus string

// Job statuses as reported by the remote service.
const (
	JobStatusNotStarted JobStatus = "NotStarted"
	JobStatusRunning    JobStatus = "Running"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusFailed     JobStatus = "Failed"
)

// Terminal reports whether the status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SearchJob is a named server-side content search. The remote service
// owns its lifecycle and status; the pipeline never mutates status
// locally and never deletes a job unless explicitly requested.
type SearchJob struct {
	// Name uniquely identifies the job on the remote service.
	Name string

	// Query is the search predicate in the service's query language.
	Query string

	// Mailbox is the target mailbox scope.
	Mailbox string

	// Status is the last observed remote state.
	Status JobStatus
}

// ExportJob is the server-side packaging of a completed search's results
// into a downloadable archive. It is derived 1:1 from a SearchJob.
type ExportJob struct {
	// Name is always "<SearchJob.Name>_Export".
	Name string

	// SearchName is the originating search job.
	SearchName string

	// Status is the last observed remote state.
	Status JobStatus

	// Results is the opaque free-text blob the service populates once
	// the export completes. It eventually contains the transfer
	// location and credential (see ParseTransferDescriptor).
	Results string
}

// ExportName derives the export job identity from a search job name.
func ExportName(searchName string) string {
	return searchName + "_Export"
}

// searchNameTimestamp is the layout for generated search job names.
const searchNameTimestamp = "20060102T150405"

// SearchJobName generates a search job identity from the run timestamp,
// the target mailbox and the subject filter. The name carries enough
// information to resume a run from its on-disk artifacts alone.
func SearchJobName(now time.Time, mailbox, subject string) string {
	parts := []string{now.Format(searchNameTimestamp)}

	if local, _, ok := strings.Cut(mailbox, "@"); ok && local != "" {
		parts = append(parts, SanitizeName(local))
	} else if mailbox != "" {
		parts = append(parts, SanitizeName(mailbox))
	}

	if subject != "" {
		parts = append(parts, SanitizeName(subject))
	}

	return strings.Join(parts, "_")
}
