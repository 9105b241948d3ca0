package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestlings/planner/internal/infrastructure/storage"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog tables",
	Long: `Create or update every table the catalog needs: products, milestone and
AI category links, reviews, milestones, recommendation history and
interaction history.

Examples:
  # Migrate the configured database
  nestctl migrate

  # Migrate a Postgres database
  NESTLINGS_DATABASE_DRIVER=postgres NESTLINGS_DATABASE_DSN=postgres://... nestctl migrate`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	if err := storage.Migrate(application.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", application.Cfg.Database.Driver)
	return nil
}
