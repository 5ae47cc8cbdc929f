package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	shelf, err := newShelf()
	if err != nil {
		return err
	}

	meta := shelf.Stats()
	fmt.Printf("Total books:     %d\n", meta.TotalBooks)
	fmt.Printf("Manually added:  %d\n", meta.ManuallyAdded)
	fmt.Printf("Bulk imported:   %d\n", meta.ImportedFromBulk)
	if meta.LastImportDate != nil {
		fmt.Printf("Last import:     %s\n", meta.LastImportDate.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
