package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

var downloadBaseDir string

var downloadCmd = &cobra.Command{
	Use:   "download [job-name]",
	Short: "Download a completed export's archives",
	Long: `Waits for the export's transfer descriptor, then runs the transfer
tool to download the archive files into <base-dir>/<job-name>/.

The destination must not already contain archive files; a run's output
is never mixed with an earlier one's.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadBaseDir, "base-dir", "", "output base directory (overrides configuration)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if err := ensureRemoteServices(cmd, true); err != nil {
		return err
	}
	if exportService == nil || transferService == nil {
		return errors.New("transfer service not configured")
	}

	jobName := strings.TrimSuffix(args[0], "_Export")

	baseDir := downloadBaseDir
	if baseDir == "" {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("read settings: %w", err)
		}
		baseDir = settings.Transfer.BaseDir
	}
	if baseDir == "" {
		return errors.New("no base directory configured; pass --base-dir or set transfer.base_dir")
	}
	destDir := filepath.Join(baseDir, jobName)

	descriptor, err := exportService.WaitForDescriptor(cmd.Context(), domain.ExportName(jobName))
	if err != nil {
		return fmt.Errorf("wait for transfer descriptor: %w", err)
	}

	archives, err := transferService.Download(cmd.Context(), *descriptor, destDir)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	for _, archive := range archives {
		cmd.Printf("  %s (%d bytes)\n", filepath.Base(archive.Path), archive.Size)
	}
	cmd.Printf("Downloaded %d archive(s) to %s.\n", len(archives), destDir)
	return nil
}
