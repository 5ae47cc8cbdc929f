package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

// clearCmd represents the clear command.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every book from the library",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}

func runClear(_ *cobra.Command, _ []string) error {
	shelf, err := newShelf()
	if err != nil {
		return err
	}

	total := shelf.Stats().TotalBooks
	if total == 0 {
		fmt.Println("Library is already empty")
		return nil
	}

	if !clearYes {
		fmt.Printf("Remove all %d books? [y/N] ", total)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := shelf.ClearAll(); err != nil {
		return err
	}
	fmt.Printf("Removed %d books\n", total)
	return nil
}
