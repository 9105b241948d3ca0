package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestlings/planner/internal/infrastructure/storage"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the milestone timeline, AI categories and sample products",
	Long: `Load the default milestone timeline, AI categories and a small sample
catalog. Seeding is idempotent: running it again updates the same rows.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	if err := storage.Migrate(application.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := storage.Seed(cmd.Context(), application.DB, application.Log); err != nil {
		return err
	}
	if err := application.Cache.Clear(cmd.Context()); err != nil {
		application.Log.Warn("cache clear failed", "error", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Seed complete")
	return nil
}
