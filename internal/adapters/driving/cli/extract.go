package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
)

// Extraction modes.
const (
	extractModeAttachments = "attachments"
	extractModeDocuments   = "documents"
)

var (
	extractOutput string
	extractFilter string
	extractNaming string
	extractMode   string
)

var extractCmd = &cobra.Command{
	Use:   "extract [archive-path]",
	Short: "Extract attachments from an archive file",
	Long: `Mounts an archive file, walks its folder tree depth-first and saves
every attachment into the output directory. The folder hierarchy is
flattened; name collisions get a CopyN- prefix.

With --mode documents the items themselves are exported instead of
their attachments, skipping the deleted-items folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output directory (default: the archive's directory)")
	extractCmd.Flags().StringVar(&extractFilter, "filter", "", "attachment extension filter, e.g. .pdf")
	extractCmd.Flags().StringVar(&extractNaming, "naming", "", "naming mode: subject or filename")
	extractCmd.Flags().StringVar(&extractMode, "mode", extractModeAttachments, "what to extract: attachments or documents")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractorService == nil {
		return errors.New("extractor service not configured")
	}

	archivePath := args[0]
	outputDir := extractOutput
	if outputDir == "" {
		outputDir = filepath.Dir(archivePath)
	}

	req := driving.ExtractRequest{
		ArchivePath:     archivePath,
		OutputDir:       outputDir,
		ExtensionFilter: extractFilter,
		NamingMode:      domain.NamingMode(extractNaming),
	}

	var result *domain.ExtractionResult
	var err error
	switch extractMode {
	case extractModeAttachments:
		result, err = extractorService.ExtractAttachments(cmd.Context(), req)
	case extractModeDocuments:
		result, err = extractorService.ExtractDocuments(cmd.Context(), req)
	default:
		return fmt.Errorf("%w: extraction mode %q", domain.ErrInvalidInput, extractMode)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	printExtraction(cmd, result)
	return nil
}

func printExtraction(cmd *cobra.Command, result *domain.ExtractionResult) {
	cmd.Printf("Archive: %s\n", result.ArchivePath)
	cmd.Printf("Output:  %s\n", result.OutputDir)
	cmd.Println()
	for _, name := range result.Files {
		cmd.Printf("  %s\n", name)
	}
	cmd.Println()
	cmd.Printf("Visited %d folder(s), scanned %d item(s), saved %d file(s).\n",
		result.FoldersVisited, result.ItemsScanned, result.AttachmentsSaved)
	if result.AttachmentsFiltered > 0 {
		cmd.Printf("Skipped %d attachment(s) not matching the filter.\n", result.AttachmentsFiltered)
	}
}
