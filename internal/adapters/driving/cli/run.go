package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
)

var (
	runMailbox      string
	runSubject      string
	runSender       string
	runStartDate    string
	runDays         int
	runJobName      string
	runFilter       string
	runNaming       string
	runBaseDir      string
	runSkipSearch   bool
	runSkipExport   bool
	runSkipDownload bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full retrieval pipeline",
	Long: `Runs search, export, download and extract as one sequence.

A new search job is created unless --job names an existing one. The
--skip flags resume a run whose earlier stages already happened; each
skip implies skipping every stage before it, and --job is then
required so the run can find its working directory.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVarP(&runMailbox, "mailbox", "m", "", "target mailbox address")
	runCmd.Flags().StringVar(&runSubject, "subject", "", "subject substring filter")
	runCmd.Flags().StringVar(&runSender, "sender", "", "sender address filter")
	runCmd.Flags().StringVar(&runStartDate, "start-date", "", "earliest received date, YYYY-MM-DD")
	runCmd.Flags().IntVar(&runDays, "days", 0, "lookback window in days, conflicts with --start-date")
	runCmd.Flags().StringVar(&runJobName, "job", "", "existing search job name to resume")
	runCmd.Flags().StringVar(&runFilter, "filter", "", "attachment extension filter, e.g. .pdf")
	runCmd.Flags().StringVar(&runNaming, "naming", "", "attachment naming mode: subject or filename")
	runCmd.Flags().StringVar(&runBaseDir, "base-dir", "", "output base directory (overrides configuration)")
	runCmd.Flags().BoolVar(&runSkipSearch, "skip-search", false, "reuse --job instead of creating a search")
	runCmd.Flags().BoolVar(&runSkipExport, "skip-export", false, "assume the export already completed")
	runCmd.Flags().BoolVar(&runSkipDownload, "skip-download", false, "extract archives already on disk")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	// A run that skips the download stage makes no remote calls at all,
	// so it must not demand a client secret.
	if err := ensureRemoteServices(cmd, !runSkipDownload); err != nil {
		return err
	}
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	req := driving.PipelineRequest{
		Mailbox: runMailbox,
		Query: domain.QueryParams{
			StartDate: runStartDate,
			Days:      runDays,
			Subject:   runSubject,
			Sender:    runSender,
		},
		JobName:         runJobName,
		ExtensionFilter: runFilter,
		NamingMode:      domain.NamingMode(runNaming),
		BaseDir:         runBaseDir,
		SkipSearch:      runSkipSearch,
		SkipExport:      runSkipExport,
		SkipDownload:    runSkipDownload,
	}

	report, err := pipelineService.Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *driving.PipelineReport) {
	cmd.Printf("Job:    %s\n", report.JobName)
	cmd.Printf("Output: %s\n", report.OutputDir)
	cmd.Println()

	for _, archive := range report.Archives {
		cmd.Printf("  Archive: %s (%d bytes)\n", filepath.Base(archive.Path), archive.Size)
	}

	saved := 0
	filtered := 0
	for i := range report.Extractions {
		saved += report.Extractions[i].AttachmentsSaved
		filtered += report.Extractions[i].AttachmentsFiltered
	}
	cmd.Println()
	cmd.Printf("Extracted %d attachment(s) from %d archive(s).\n", saved, len(report.Extractions))
	if filtered > 0 {
		cmd.Printf("Skipped %d attachment(s) not matching the filter.\n", filtered)
	}
}
