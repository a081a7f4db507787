package driving

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// HistoryService reads the local run ledger.
type HistoryService interface {
	// List returns the most recent runs, newest first. A limit of 0
	// returns all.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get retrieves one run by ID.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)
}
