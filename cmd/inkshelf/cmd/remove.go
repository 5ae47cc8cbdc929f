package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeSoft bool

// removeCmd represents the remove command.
var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a book from the library",
	Long: `Remove deletes the book with the given identifier.

With --soft the book is verified but left in place; the library file is
rewritten without any record being removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().BoolVar(&removeSoft, "soft", false, "verify the book exists without removing it")
}

func runRemove(_ *cobra.Command, args []string) error {
	shelf, err := newShelf()
	if err != nil {
		return err
	}

	if err := shelf.RemoveBook(args[0], !removeSoft); err != nil {
		return err
	}
	if removeSoft {
		fmt.Printf("Kept %s\n", args[0])
	} else {
		fmt.Printf("Removed %s\n", args[0])
	}
	return nil
}
