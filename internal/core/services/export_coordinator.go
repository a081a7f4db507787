package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// Ensure ExportCoordinator implements the interface.
var _ driving.ExportCoordinator = (*ExportCoordinator)(nil)

// ExportCoordinator drives export jobs until their archive is ready to
// download.
type ExportCoordinator struct {
	service driven.ComplianceService
	poll    domain.PollSettings
}

// NewExportCoordinator creates a new export coordinator.
func NewExportCoordinator(service driven.ComplianceService, poll domain.PollSettings) *ExportCoordinator {
	return &ExportCoordinator{
		service: service,
		poll:    poll,
	}
}

// Request issues the export action for a completed search. The service
// packages one consolidated archive covering previously-indexed items
// only; items outside the search index are excluded.
func (c *ExportCoordinator) Request(ctx context.Context, searchName string) (*domain.ExportJob, error) {
	export, err := c.service.CreateExport(ctx, searchName)
	if err != nil {
		return nil, fmt.Errorf("create export for %s: %w", searchName, err)
	}
	logger.Info("Requested export %s", export.Name)
	return &export, nil
}

// WaitForDescriptor polls the export until its status is Completed and
// its results text carries the transfer markers. Result population can
// lag status by several poll cycles, so absence of the markers is never
// an error here; the wait just continues.
func (c *ExportCoordinator) WaitForDescriptor(ctx context.Context, exportName string) (*domain.TransferDescriptor, error) {
	var descriptor *domain.TransferDescriptor

	err := pollUntil(ctx, c.poll, func(ctx context.Context) (bool, error) {
		export, err := c.service.GetExport(ctx, exportName)
		if err != nil {
			logger.Warn("Export %s status read failed, polling again: %v", exportName, err)
			return false, nil
		}
		logger.Debug("Export %s status: %s", exportName, export.Status)

		if export.Status == domain.JobStatusFailed {
			return false, fmt.Errorf("export %s: %w", exportName, domain.ErrJobFailed)
		}
		if export.Status != domain.JobStatusCompleted {
			return false, nil
		}

		parsed, err := domain.ParseTransferDescriptor(exportName, export.Results)
		if errors.Is(err, domain.ErrNoTransferDescriptor) {
			logger.Debug("Export %s results not yet populated", exportName)
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("parse results of %s: %w", exportName, err)
		}

		descriptor = &parsed
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Export %s ready at %s", exportName, descriptor.LocationURI)
	return descriptor, nil
}

// Status reads the export's current remote state.
func (c *ExportCoordinator) Status(ctx context.Context, exportName string) (*domain.ExportJob, error) {
	export, err := c.service.GetExport(ctx, exportName)
	if err != nil {
		return nil, fmt.Errorf("get export %s: %w", exportName, err)
	}
	return export, nil
}
