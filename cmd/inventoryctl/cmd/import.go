package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-inventory-sync/internal/ingest"
	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/services"
)

var replaceAll bool

var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Sync a TCGplayer inventory export",
	Long: `Import a TCGplayer-style CSV export into the user's inventory.

By default rows are merged into existing holdings. With --replace-all the
file becomes the user's complete inventory.

Examples:
  inventoryctl import export.csv --user alice
  inventoryctl import export.csv --user alice --replace-all`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		parsed, err := ingest.ParseCSV(f)
		if err != nil {
			return err
		}

		mode := models.SyncModeMerge
		if replaceAll {
			mode = models.SyncModeReplaceAll
		}

		result, err := syncService.SubmitBatch(context.Background(), services.BatchRequest{
			UserID:   userID,
			Records:  parsed.Records,
			Mode:     mode,
			FileName: filepath.Base(path),
			FileSize: info.Size(),
			FileType: "text/csv",
			Metadata: parsed.Metadata(),
		})
		if result != nil {
			printBatchResult(cmd.OutOrStdout(), result, parsed.SkippedRows)
		}
		return err
	},
}

func printBatchResult(w io.Writer, r *models.BatchResult, skipped int) {
	fmt.Fprintln(w, r.Message)
	fmt.Fprintf(w, "upload:  %s\n", r.UploadID)
	if !r.Success {
		return
	}
	fmt.Fprintf(w, "items:   %d (%d cards)\n", r.TotalItems, r.TotalCards)
	fmt.Fprintf(w, "value:   %s\n", formatUSD(r.TotalValue))
	if skipped > 0 {
		fmt.Fprintf(w, "skipped: %d rows\n", skipped)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s: %s\n", e.Item, e.Error)
	}
}

func init() {
	importCmd.Flags().BoolVar(&replaceAll, "replace-all", false, "replace the user's whole inventory with the file")
	rootCmd.AddCommand(importCmd)
}
