package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkbox/internal/app"
)

var tagsCounts bool

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag in use",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().BoolVarP(&tagsCounts, "counts", "c", false, "Show how many links carry each tag")
}

func runTags(cmd *cobra.Command, args []string) error {
	return withBackend(cmd.Context(), func(b *app.Backend) error {
		tags, err := b.Service.Tags(cmd.Context())
		if err != nil {
			return err
		}
		var counts map[string]int
		if tagsCounts {
			if counts, err = b.Service.TagCounts(cmd.Context()); err != nil {
				return err
			}
		}
		for _, tag := range tags {
			if counts != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", tag, counts[tag])
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag)
		}
		return nil
	})
}
