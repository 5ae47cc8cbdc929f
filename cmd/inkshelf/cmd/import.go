package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkshelf/inkshelf/internal/config"
	"github.com/inkshelf/inkshelf/pkg/reconcile"
)

var (
	importRemote bool
	importMode   string
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a bulk export file into the library",
	Long: `Import reconciles a bulk export file against the library.

Two modes are supported:

  merge_update  insert new books and refresh mutable fields of existing
                ones (the default)
  insert_only   insert books that were not in the library when the
                import started; everything else is reported as a
                duplicate

With --remote the export is fetched over HTTP from the given URL, or
from INKSHELF_IMPORT_URL when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importRemote, "remote", false, "fetch the export over HTTP instead of reading a file")
	importCmd.Flags().StringVar(&importMode, "mode", string(reconcile.ModeMergeUpdate), "reconciliation mode (merge_update or insert_only)")
}

func runImport(cmd *cobra.Command, args []string) error {
	mode := reconcile.Mode(importMode)
	if !mode.IsValid() {
		return fmt.Errorf("unknown mode %q", importMode)
	}

	shelf, err := newShelf()
	if err != nil {
		return err
	}

	var result *reconcile.Result
	if importRemote {
		url := config.ImportURL()
		if len(args) > 0 {
			url = args[0]
		}
		if url == "" {
			return fmt.Errorf("a URL argument or %s is required with --remote", config.EnvImportURL)
		}
		result, err = shelf.ImportRemote(cmd.Context(), url, mode)
	} else {
		if len(args) == 0 {
			return fmt.Errorf("an export file path is required")
		}
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("reading export file: %w", readErr)
		}
		result, err = shelf.ImportBytes(cmd.Context(), data, mode)
	}
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())
	for _, failure := range result.Failed {
		fmt.Fprintf(os.Stderr, "  record %d (%s): %v\n", failure.Index, failure.ID, failure.Err)
	}
	if result.HasErrors() {
		return fmt.Errorf("%d records failed to import", result.Errored)
	}
	return nil
}
