package driven

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// ComplianceService is the remote search/export service. Implementations
// own job lifecycle and status; the core only creates jobs, starts them
// and reads their state.
type ComplianceService interface {
	// ListSearches returns all search jobs visible to the caller.
	ListSearches(ctx context.Context) ([]domain.SearchJob, error)

	// CreateSearch registers a new search job. The returned job carries
	// the service's view of it.
	CreateSearch(ctx context.Context, job domain.SearchJob) (domain.SearchJob, error)

	// StartSearch begins executing a registered search job.
	StartSearch(ctx context.Context, name string) error

	// GetSearch reads current job state. Returns domain.ErrNotFound for
	// unknown names.
	GetSearch(ctx context.Context, name string) (*domain.SearchJob, error)

	// DeleteSearch removes a search job and its results.
	DeleteSearch(ctx context.Context, name string) error

	// CreateExport issues an export action against a completed search.
	// Format and scope are fixed: one consolidated archive containing
	// previously-indexed items only.
	CreateExport(ctx context.Context, searchName string) (domain.ExportJob, error)

	// GetExport reads export state including the free-text results blob.
	// Returns domain.ErrNotFound for unknown names.
	GetExport(ctx context.Context, name string) (*domain.ExportJob, error)
}
