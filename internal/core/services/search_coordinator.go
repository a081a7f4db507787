package services

import (
	"context"
	"fmt"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// Ensure SearchCoordinator implements the interface.
var _ driving.SearchCoordinator = (*SearchCoordinator)(nil)

// SearchCoordinator drives server-side search jobs to completion.
type SearchCoordinator struct {
	service driven.ComplianceService
	poll    domain.PollSettings
}

// NewSearchCoordinator creates a new search coordinator.
func NewSearchCoordinator(service driven.ComplianceService, poll domain.PollSettings) *SearchCoordinator {
	return &SearchCoordinator{
		service: service,
		poll:    poll,
	}
}

// StartOrReuse returns a started job whose predicate equals query.
// Deduplication is by predicate, not by name: repeated runs with the
// same filter set restart the earlier job instead of triggering another
// full-mailbox scan.
func (c *SearchCoordinator) StartOrReuse(ctx context.Context, name, query, mailbox string) (*domain.SearchJob, error) {
	// 1. Look for an existing job with an identical predicate
	jobs, err := c.service.ListSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	for i := range jobs {
		if jobs[i].Query == query {
			logger.Info("Reusing search job %s with identical predicate", jobs[i].Name)
			if err := c.service.StartSearch(ctx, jobs[i].Name); err != nil {
				return nil, fmt.Errorf("restart search %s: %w", jobs[i].Name, err)
			}
			return &jobs[i], nil
		}
	}

	// 2. Create and start a new job
	logger.Info("Creating search job %s", name)
	created, err := c.service.CreateSearch(ctx, domain.SearchJob{
		Name:    name,
		Query:   query,
		Mailbox: mailbox,
	})
	if err != nil {
		return nil, fmt.Errorf("create search %s: %w", name, err)
	}
	if err := c.service.StartSearch(ctx, created.Name); err != nil {
		return nil, fmt.Errorf("start search %s: %w", created.Name, err)
	}
	return &created, nil
}

// WaitForCompletion polls the job at the configured interval until the
// remote status is Completed. Read failures count as not yet completed
// and simply cause another sleep-then-poll cycle.
func (c *SearchCoordinator) WaitForCompletion(ctx context.Context, name string) (*domain.SearchJob, error) {
	var last *domain.SearchJob

	err := pollUntil(ctx, c.poll, func(ctx context.Context) (bool, error) {
		job, err := c.service.GetSearch(ctx, name)
		if err != nil {
			logger.Warn("Search %s status read failed, polling again: %v", name, err)
			return false, nil
		}
		last = job
		logger.Debug("Search %s status: %s", name, job.Status)

		switch job.Status {
		case domain.JobStatusCompleted:
			return true, nil
		case domain.JobStatusFailed:
			return false, fmt.Errorf("search %s: %w", name, domain.ErrJobFailed)
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

// Status reads the job's current remote state.
func (c *SearchCoordinator) Status(ctx context.Context, name string) (*domain.SearchJob, error) {
	job, err := c.service.GetSearch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get search %s: %w", name, err)
	}
	return job, nil
}

// Delete removes the job from the remote service.
func (c *SearchCoordinator) Delete(ctx context.Context, name string) error {
	if err := c.service.DeleteSearch(ctx, name); err != nil {
		return fmt.Errorf("delete search %s: %w", name, err)
	}
	logger.Info("Deleted search job %s", name)
	return nil
}
