package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past pipeline runs",
	Long: `Lists runs recorded in the local history database, newest first.

The history is observational: resuming a run still keys off job names
and the files in its working directory.`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list, 0 for all")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		printRunLine(cmd, &runs[i])
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	run, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("show run: %w", err)
	}

	cmd.Printf("ID:      %s\n", run.ID)
	cmd.Printf("Job:     %s\n", run.JobName)
	cmd.Printf("Status:  %s\n", run.Status)
	if run.Mailbox != "" {
		cmd.Printf("Mailbox: %s\n", run.Mailbox)
	}
	if run.Query != "" {
		cmd.Printf("Query:   %s\n", run.Query)
	}
	if run.OutputDir != "" {
		cmd.Printf("Output:  %s\n", run.OutputDir)
	}
	cmd.Printf("Started: %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.Finished() {
		cmd.Printf("Took:    %s\n", run.Duration().Round(time.Second))
	}
	if run.Status == domain.RunStatusFailed {
		cmd.Printf("Stage:   %s\n", run.FailedStage)
		cmd.Printf("Error:   %s\n", run.Error)
	}
	return nil
}

func printRunLine(cmd *cobra.Command, run *domain.RunRecord) {
	status := string(run.Status)
	if run.Status == domain.RunStatusFailed && run.FailedStage != "" {
		status = fmt.Sprintf("%s (%s)", run.Status, run.FailedStage)
	}
	cmd.Printf("%s  %-19s  %-10s  %s\n",
		run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), status, run.JobName)
}
