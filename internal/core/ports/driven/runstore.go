package driven

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// RunStore persists the local pipeline run history. The history is
// observational only; runs resume from job names and disk artifacts,
// never from these records.
type RunStore interface {
	// Save stores or updates a run record keyed by ID.
	Save(ctx context.Context, run domain.RunRecord) error

	// Get retrieves one run. Returns domain.ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns the most recent runs, newest first. A limit of 0
	// returns all.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Close releases the underlying database.
	Close() error
}
