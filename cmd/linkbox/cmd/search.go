package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkbox/internal/app"
)

var (
	searchFilter string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search visible links by title, tag or memo",
	Long:  "Case-insensitive substring search. Prefix the query with # to search tags only.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchFilter, "filter", "f", "all", "Field to search: all, title, tag, memo")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	return withBackend(cmd.Context(), func(b *app.Backend) error {
		results, err := b.Service.Search(query, searchFilter)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if searchJSON {
			return json.NewEncoder(out).Encode(results)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no matches")
			return nil
		}
		for _, r := range results {
			title := r.Link.Title
			if title == "" {
				title = r.Link.URL
			}
			fmt.Fprintf(out, "%s\n  %s", title, r.Link.URL)
			if len(r.MatchedTags) > 0 {
				fmt.Fprintf(out, "  #%s", strings.Join(r.MatchedTags, " #"))
			}
			fmt.Fprintln(out)
		}
		return nil
	})
}
