package services

import (
	"context"
	"fmt"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads the local run ledger.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns the most recent runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	records, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return records, nil
}

// Get retrieves one run by ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	record, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return record, nil
}
