package driving

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// SearchCoordinator drives server-side search jobs to completion.
type SearchCoordinator interface {
	// StartOrReuse returns a started job whose predicate equals query.
	// An existing job with an identical predicate is restarted and
	// reused; otherwise a job named name is created and started.
	StartOrReuse(ctx context.Context, name, query, mailbox string) (*domain.SearchJob, error)

	// WaitForCompletion polls the job at the configured interval until
	// the remote status is Completed. Status read failures count as not
	// yet completed. A Failed status surfaces domain.ErrJobFailed.
	WaitForCompletion(ctx context.Context, name string) (*domain.SearchJob, error)

	// Status reads the job's current remote state.
	Status(ctx context.Context, name string) (*domain.SearchJob, error)

	// Delete removes the job from the remote service.
	Delete(ctx context.Context, name string) error
}
