package driven

import (
	"context"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// TransferTool runs the external download executable as a child process.
// The core observes only process liveness and the files it leaves in the
// destination directory; the tool's own output is never parsed.
type TransferTool interface {
	// Check verifies the executable can be resolved. Wraps
	// domain.ErrToolNotFound when it cannot.
	Check() error

	// Run launches the tool against the descriptor's location and blocks
	// until the process exits. Progress of partially written archive
	// files is logged while waiting.
	Run(ctx context.Context, descriptor domain.TransferDescriptor, destDir string) error
}
