package driving

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// TransferService downloads export archives to local disk.
type TransferService interface {
	// Download runs the external tool against the descriptor and
	// returns the archives it produced, renamed with the job-name
	// prefix. It refuses to run if destDir already contains archive
	// files (domain.ErrDestNotEmpty).
	Download(ctx context.Context, descriptor domain.TransferDescriptor, destDir string) ([]domain.DownloadedArchive, error)
}
