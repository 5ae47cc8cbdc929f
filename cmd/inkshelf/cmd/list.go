package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/inkshelf/inkshelf/pkg/books"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List books in the library",
	Long: `List prints the library in insertion order.

With a query argument only books whose title or authors contain the
query (case-insensitively) are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, args []string) error {
	shelf, err := newShelf()
	if err != nil {
		return err
	}

	var records []books.BookRecord
	if len(args) > 0 {
		records = shelf.SearchBooks(args[0])
	} else {
		records = shelf.Library().Books().List()
	}
	if len(records) == 0 {
		fmt.Println("No books found")
		return nil
	}

	caser := cases.Title(language.English)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{
		caser.String("id"),
		caser.String("title"),
		caser.String("authors"),
		caser.String("status"),
		caser.String("source"),
	}, "\t"))
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.EffectiveID(), rec.Title, rec.Authors, rec.ReadStatus, rec.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d books\n", len(records))
	return nil
}
