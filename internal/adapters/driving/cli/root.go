// Package cli implements the command-line driving adapter. The command
// set is a closed registry: every operation the tool exposes is a cobra
// command wired here, and the core services arrive pre-built from main.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands dispatch to. Set once from main before Execute;
// tests swap individual entries.
var (
	settingsService  driving.SettingsService
	historyService   driving.HistoryService
	extractorService driving.ArchiveExtractor
	transferService  driving.TransferService

	searchService   driving.SearchCoordinator
	exportService   driving.ExportCoordinator
	pipelineService driving.PipelineRunner

	remoteFactory RemoteFactory
)

// RemoteServices groups the services that talk to the hosted mailbox
// service and therefore need a client secret.
type RemoteServices struct {
	Search   driving.SearchCoordinator
	Export   driving.ExportCoordinator
	Pipeline driving.PipelineRunner
}

// RemoteFactory builds the remote-backed services. The CLI calls it at
// most once, the first time a command actually needs the hosted
// service, with the resolved client secret. A positive pollTimeout caps
// every wait stage; zero keeps the configured value.
type RemoteFactory func(clientSecret string, pollTimeout time.Duration) (*RemoteServices, error)

// Services carries the constructed core services into the CLI.
type Services struct {
	Settings  driving.SettingsService
	History   driving.HistoryService
	Extractor driving.ArchiveExtractor
	Transfer  driving.TransferService
	Remote    RemoteFactory
}

// SetServices wires the core services into the command registry.
func SetServices(s Services) {
	settingsService = s.Settings
	historyService = s.History
	extractorService = s.Extractor
	transferService = s.Transfer
	remoteFactory = s.Remote
}

var (
	verbose     bool
	pollTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "m365powerkit",
	Short: "Retrieve email attachments from hosted mailboxes",
	Long: `m365powerkit automates attachment retrieval from a hosted mailbox
service: it creates a compliance search, exports the results, downloads
the export archives and extracts the attachments they contain.

'run' executes the whole pipeline; the other commands drive or inspect
individual stages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
	rootCmd.PersistentFlags().DurationVar(&pollTimeout, "poll-timeout", 0, "cap each remote wait, e.g. 45m (0 uses the configured value)")
}

// Execute runs the root command. The context carries cancellation from
// main's signal handler into every stage.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ensureRemoteServices builds the search, export and pipeline services
// on first use. Commands that never touch the hosted service never
// trigger the client-secret prompt. needsSecret is false when the
// invocation is known to stay local (for example a fully skipped run).
func ensureRemoteServices(cmd *cobra.Command, needsSecret bool) error {
	if searchService != nil && exportService != nil && pipelineService != nil {
		return nil
	}
	if remoteFactory == nil {
		return errors.New("remote services not configured")
	}

	secret := ""
	if needsSecret {
		var err error
		secret, err = resolveClientSecret(cmd)
		if err != nil {
			return err
		}
	}

	remote, err := remoteFactory(secret, pollTimeout)
	if err != nil {
		return fmt.Errorf("initialise remote services: %w", err)
	}
	searchService = remote.Search
	exportService = remote.Export
	pipelineService = remote.Pipeline
	return nil
}
