package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkbox/internal/app"
)

var purgeOlderThan time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove soft-deleted links for good",
	Long:  "Runs the garbage collector once. Defaults to LINKBOX_GC_THRESHOLD.",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 0, "Only purge links deleted longer ago than this (0 = configured threshold)")
}

func runPurge(cmd *cobra.Command, args []string) error {
	threshold := purgeOlderThan
	if threshold <= 0 {
		threshold = cfg.GCThreshold
	}
	return withBackend(cmd.Context(), func(b *app.Backend) error {
		n, err := b.Service.PurgeDeleted(cmd.Context(), threshold)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d links\n", n)
		return nil
	})
}
