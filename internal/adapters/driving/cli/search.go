package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage search jobs",
	Long: `Inspects and deletes search jobs on the hosted service.

Jobs are created by 'run' and are never deleted implicitly; use
'search delete' to remove one once its results are no longer needed.`,
}

var searchStatusCmd = &cobra.Command{
	Use:   "status [job-name]",
	Short: "Show a search job's remote status",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchStatus,
}

var searchDeleteCmd = &cobra.Command{
	Use:   "delete [job-name]",
	Short: "Delete a search job from the service",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchDelete,
}

func init() {
	searchCmd.AddCommand(searchStatusCmd)
	searchCmd.AddCommand(searchDeleteCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearchStatus(cmd *cobra.Command, args []string) error {
	if err := ensureRemoteServices(cmd, true); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	job, err := searchService.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("read search status: %w", err)
	}

	cmd.Printf("Name:    %s\n", job.Name)
	cmd.Printf("Status:  %s\n", job.Status)
	if job.Mailbox != "" {
		cmd.Printf("Mailbox: %s\n", job.Mailbox)
	}
	if job.Query != "" {
		cmd.Printf("Query:   %s\n", job.Query)
	}
	return nil
}

func runSearchDelete(cmd *cobra.Command, args []string) error {
	if err := ensureRemoteServices(cmd, true); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	if err := searchService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete search: %w", err)
	}

	cmd.Printf("Search %s deleted.\n", args[0])
	return nil
}
