package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

var exportReveal bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Inspect export jobs",
	Long: `Inspects export jobs on the hosted service.

Exports are requested by 'run'. Both subcommands accept either the
search job name or the derived export name.`,
}

var exportStatusCmd = &cobra.Command{
	Use:   "status [job-name]",
	Short: "Show an export job's remote status",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportStatus,
}

var exportShowDescriptorCmd = &cobra.Command{
	Use:   "show-descriptor [job-name]",
	Short: "Print the transfer descriptor of a completed export",
	Long: `Parses the export's results text and prints the transfer location and
credential token. The token is masked unless --reveal is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExportShowDescriptor,
}

func init() {
	exportShowDescriptorCmd.Flags().BoolVar(&exportReveal, "reveal", false, "print the credential token unmasked")
	exportCmd.AddCommand(exportStatusCmd)
	exportCmd.AddCommand(exportShowDescriptorCmd)
	rootCmd.AddCommand(exportCmd)
}

// exportNameArg accepts both the search job name and the export name.
func exportNameArg(arg string) string {
	if strings.HasSuffix(arg, "_Export") {
		return arg
	}
	return domain.ExportName(arg)
}

func runExportStatus(cmd *cobra.Command, args []string) error {
	if err := ensureRemoteServices(cmd, true); err != nil {
		return err
	}
	if exportService == nil {
		return errors.New("export service not configured")
	}

	name := exportNameArg(args[0])
	job, err := exportService.Status(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("read export status: %w", err)
	}

	cmd.Printf("Name:   %s\n", job.Name)
	if job.SearchName != "" {
		cmd.Printf("Search: %s\n", job.SearchName)
	}
	cmd.Printf("Status: %s\n", job.Status)

	if _, err := domain.ParseTransferDescriptor(job.Name, job.Results); err == nil {
		cmd.Println("Transfer descriptor: available")
	} else {
		cmd.Println("Transfer descriptor: not yet populated")
	}
	return nil
}

func runExportShowDescriptor(cmd *cobra.Command, args []string) error {
	if err := ensureRemoteServices(cmd, true); err != nil {
		return err
	}
	if exportService == nil {
		return errors.New("export service not configured")
	}

	name := exportNameArg(args[0])
	job, err := exportService.Status(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("read export status: %w", err)
	}

	descriptor, err := domain.ParseTransferDescriptor(job.Name, job.Results)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}

	token := maskToken(descriptor.CredentialToken)
	if exportReveal {
		token = descriptor.CredentialToken
	}

	cmd.Printf("Job:      %s\n", descriptor.JobName)
	cmd.Printf("Location: %s\n", descriptor.LocationURI)
	cmd.Printf("Token:    %s\n", token)
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
