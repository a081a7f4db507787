package driving

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// ExportCoordinator drives export jobs until their archive is ready to
// download.
type ExportCoordinator interface {
	// Request issues the export action for a completed search.
	Request(ctx context.Context, searchName string) (*domain.ExportJob, error)

	// WaitForDescriptor polls the export until its status is Completed
	// and its results text carries the transfer markers, then returns
	// the parsed descriptor. Result population can lag status, so the
	// wait keeps polling until the markers appear.
	WaitForDescriptor(ctx context.Context, exportName string) (*domain.TransferDescriptor, error)

	// Status reads the export's current remote state.
	Status(ctx context.Context, exportName string) (*domain.ExportJob, error)
}
