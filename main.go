// m365powerkit retrieves email attachments from a hosted mailbox
// service by chaining four stages: create a compliance search, export
// its results, download the export archives and extract the
// attachments they contain.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/markz0r/M365PowerKit/internal/adapters/driven/archive"
	"github.com/markz0r/M365PowerKit/internal/adapters/driven/archive/mbox"
	"github.com/markz0r/M365PowerKit/internal/adapters/driven/archive/outlook"
	"github.com/markz0r/M365PowerKit/internal/adapters/driven/auth"
	"github.com/markz0r/M365PowerKit/internal/adapters/driven/compliance"
	configfile "github.com/markz0r/M365PowerKit/internal/adapters/driven/config/file"
	"github.com/markz0r/M365PowerKit/internal/adapters/driven/storage/sqlite"
	"github.com/markz0r/M365PowerKit/internal/adapters/driven/transfer/azcopy"
	"github.com/markz0r/M365PowerKit/internal/adapters/driving/cli"
	"github.com/markz0r/M365PowerKit/internal/core/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the driven adapters into the core services and hands them
// to the CLI. The services that talk to the hosted mailbox service are
// built lazily through a factory so that purely local commands never
// prompt for a client secret.
func run(ctx context.Context) error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	dataDir := ""
	if settings.Storage.HistoryPath != "" {
		dataDir = filepath.Dir(settings.Storage.HistoryPath)
	}
	runStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer runStore.Close()

	mounter := archive.NewSelector()
	mounter.Register(".pst", outlook.NewMounter())
	mounter.Register(".mbox", mbox.NewMounter())

	extractorService := services.NewExtractorService(mounter, settings.Extraction)
	transferService := services.NewTransferService(azcopy.New(settings.Transfer.ToolPath))

	remote := func(clientSecret string, pollTimeout time.Duration) (*cli.RemoteServices, error) {
		svc := settings.Service
		svc.ClientSecret = clientSecret
		if !svc.IsConfigured() {
			return nil, errors.New("remote service is not configured; run 'm365powerkit settings set-service' first")
		}

		poll := settings.Poll
		if pollTimeout > 0 {
			poll.Timeout = pollTimeout
		}

		tokens := auth.NewClientCredentialsProvider(svc)
		client := compliance.NewClient(svc.BaseURL, tokens, svc.RequestsPerSecond)

		search := services.NewSearchCoordinator(client, poll)
		export := services.NewExportCoordinator(client, poll)
		pipeline := services.NewPipelineService(
			search, export, transferService, extractorService,
			runStore, settings.Transfer.BaseDir,
		)
		return &cli.RemoteServices{Search: search, Export: export, Pipeline: pipeline}, nil
	}

	cli.SetServices(cli.Services{
		Settings:  settingsService,
		History:   services.NewHistoryService(runStore),
		Extractor: extractorService,
		Transfer:  transferService,
		Remote:    remote,
	})
	return cli.Execute(ctx)
}
