package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkshelf/inkshelf/pkg/books"
)

var (
	addLink   string
	addVolume string

	addTitle   string
	addAuthors string
	addStatus  string
	addCover   string
	addMemo    string
	addRating  int
)

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:   "add [identifier]",
	Short: "Add a single book to the library",
	Long: `Add inserts one book into the library.

A book can be added three ways:

  inkshelf add B000ABCDEF --title "..." --authors "..."
  inkshelf add --link "https://www.amazon.com/dp/B000ABCDEF"
  inkshelf add --volume zyBCDE5tkzk

Link and volume additions look the book up in the public catalog; when
the lookup fails the book is still added as a placeholder so metadata
can be filled in later.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addLink, "link", "", "marketplace or catalog detail page URL")
	addCmd.Flags().StringVar(&addVolume, "volume", "", "catalog volume identifier")
	addCmd.Flags().StringVar(&addTitle, "title", "", "book title")
	addCmd.Flags().StringVar(&addAuthors, "authors", "", "author display string")
	addCmd.Flags().StringVar(&addStatus, "status", "", "read status (READ or UNKNOWN)")
	addCmd.Flags().StringVar(&addCover, "cover", "", "cover image URL")
	addCmd.Flags().StringVar(&addMemo, "memo", "", "free-form note")
	addCmd.Flags().IntVar(&addRating, "rating", 0, "personal rating")
	addCmd.MarkFlagsMutuallyExclusive("link", "volume")
}

func runAdd(cmd *cobra.Command, args []string) error {
	shelf, err := newShelf()
	if err != nil {
		return err
	}

	var rec books.BookRecord
	switch {
	case addLink != "":
		rec, err = shelf.AddByLink(cmd.Context(), addLink)
	case addVolume != "":
		rec, err = shelf.AddByVolumeID(cmd.Context(), addVolume)
	default:
		if len(args) == 0 {
			return fmt.Errorf("an identifier, --link, or --volume is required")
		}
		raw := books.RawRecord{
			ID:            args[0],
			Title:         addTitle,
			Authors:       addAuthors,
			ReadStatus:    addStatus,
			CoverImageURL: addCover,
		}
		if cmd.Flags().Changed("memo") {
			raw.Memo = &addMemo
		}
		if cmd.Flags().Changed("rating") {
			raw.Rating = &addRating
		}
		rec, err = shelf.AddBook(raw)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Added %s", rec.ID)
	if rec.Title != "" {
		fmt.Printf(" - %s", rec.Title)
	}
	fmt.Println()
	return nil
}
