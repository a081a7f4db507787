package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// clientSecretEnv is the environment variable holding the client
// secret. The secret is never written to the config file; it comes from
// the environment or an interactive prompt.
const clientSecretEnv = "M365_CLIENT_SECRET"

var (
	setServiceBaseURL  string
	setServiceTenantID string
	setServiceClientID string

	setTransferTool    string
	setTransferBaseDir string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the service connection, transfer tool and other
options. Settings live in a TOML file under the user's home directory.

The client secret is never stored; set ` + clientSecretEnv + ` or enter
it at the prompt when a command contacts the hosted service.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetServiceCmd = &cobra.Command{
	Use:   "set-service",
	Short: "Configure the hosted service connection",
	RunE:  runSettingsSetService,
}

var settingsSetTransferCmd = &cobra.Command{
	Use:   "set-transfer",
	Short: "Configure the transfer tool and output directory",
	RunE:  runSettingsSetTransfer,
}

func init() {
	settingsSetServiceCmd.Flags().StringVar(&setServiceBaseURL, "base-url", "", "service API root URL")
	settingsSetServiceCmd.Flags().StringVar(&setServiceTenantID, "tenant-id", "", "directory tenant ID")
	settingsSetServiceCmd.Flags().StringVar(&setServiceClientID, "client-id", "", "application client ID")
	settingsSetTransferCmd.Flags().StringVar(&setTransferTool, "tool", "", "transfer tool executable path")
	settingsSetTransferCmd.Flags().StringVar(&setTransferBaseDir, "base-dir", "", "output base directory")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetServiceCmd)
	settingsCmd.AddCommand(settingsSetTransferCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Service]")
	cmd.Printf("  Base URL:  %s\n", orUnset(settings.Service.BaseURL))
	cmd.Printf("  Tenant ID: %s\n", orUnset(settings.Service.TenantID))
	cmd.Printf("  Client ID: %s\n", orUnset(settings.Service.ClientID))
	cmd.Printf("  Scope:     %s\n", settings.Service.Scope)
	cmd.Printf("  Rate:      %.1f requests/s\n", settings.Service.RequestsPerSecond)
	if os.Getenv(clientSecretEnv) != "" {
		cmd.Printf("  Secret:    from %s\n", clientSecretEnv)
	} else {
		cmd.Printf("  Secret:    (not set; will prompt)\n")
	}
	status := "configured"
	if !settings.Service.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status:    %s\n", status)
	cmd.Println()

	cmd.Println("[Transfer]")
	cmd.Printf("  Tool:     %s\n", settings.Transfer.ToolPath)
	cmd.Printf("  Base dir: %s\n", orUnset(settings.Transfer.BaseDir))
	cmd.Println()

	cmd.Println("[Poll]")
	cmd.Printf("  Interval: %s\n", settings.Poll.Interval)
	if settings.Poll.Timeout > 0 {
		cmd.Printf("  Timeout:  %s\n", settings.Poll.Timeout)
	} else {
		cmd.Printf("  Timeout:  none\n")
	}
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Naming mode:  %s\n", settings.Extraction.NamingMode)
	cmd.Printf("  Settle delay: %s\n", settings.Extraction.SettleDelay)
	cmd.Printf("  Trash folder: %s\n", settings.Extraction.TrashFolder)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'm365powerkit settings set-service' and 'set-transfer' to fix this.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSetService(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetService(setServiceBaseURL, setServiceTenantID, setServiceClientID); err != nil {
		return fmt.Errorf("failed to set service connection: %w", err)
	}

	cmd.Println("Service connection saved.")
	return nil
}

func runSettingsSetTransfer(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if setTransferTool == "" && setTransferBaseDir == "" {
		return errors.New("nothing to set; pass --tool or --base-dir")
	}

	if err := settingsService.SetTransfer(setTransferTool, setTransferBaseDir); err != nil {
		return fmt.Errorf("failed to set transfer settings: %w", err)
	}

	cmd.Println("Transfer settings saved.")
	return nil
}

// resolveClientSecret returns the client secret from the environment,
// falling back to an interactive prompt.
func resolveClientSecret(cmd *cobra.Command) (string, error) {
	if secret := os.Getenv(clientSecretEnv); secret != "" {
		return secret, nil
	}

	cmd.Printf("Enter client secret (or set %s): ", clientSecretEnv)
	secret := readPassword()
	cmd.Println()
	if secret == "" {
		return "", errors.New("client secret is required")
	}
	return secret, nil
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read the secret without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
