package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkbox/internal/app"
	"github.com/MrSnakeDoc/linkbox/internal/config"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/version"
)

var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "linkbox",
	Short:         "linkbox: bookmark organizer",
	Long:          "Save links, file them in folders, tag them and search them. Configured through LINKBOX_* environment variables.",
	Version:       version.String(),
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logger.New(cfg.LogLevel, cfg.PrettyLog)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withBackend opens the configured store for a one-shot command.
func withBackend(ctx context.Context, fn func(b *app.Backend) error) error {
	b, err := app.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	defer b.Close()
	return fn(b)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(purgeCmd)
}
