package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkbox/internal/app"
	"github.com/MrSnakeDoc/linkbox/internal/sources/homepage"
)

var importCmd = &cobra.Command{
	Use:   "import <bookmarks.yaml>",
	Short: "Import a homepage-style bookmarks file",
	Long:  "Creates a folder per category and a link per bookmark. Links whose URL is already stored are skipped, so importing twice is safe.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	items, err := homepage.LoadItems(args[0])
	if err != nil {
		return err
	}
	return withBackend(cmd.Context(), func(b *app.Backend) error {
		res, err := b.Service.Import(cmd.Context(), items)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d links into %d new folders (%d skipped)\n",
			res.LinksCreated, res.FoldersCreated, res.Skipped)
		return nil
	})
}
