package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mytheresa/storefront/app/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, cleanup, err := connectDB(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		run := database.NewRunner(db, database.Schema, database.NewVersioner(db, database.MigrationTable))
		applied, err := run.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		if applied == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Applied %d migrations\n", applied)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  "Shows all applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, cleanup, err := connectDB(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		run := database.NewRunner(db, database.Schema, database.NewVersioner(db, database.MigrationTable))
		applied, err := run.Applied(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get applied migrations: %w", err)
		}
		pending, err := run.Pending(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get pending migrations: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.Repeat("=", 60))
		fmt.Fprintln(out, "Migration Status")
		fmt.Fprintln(out, strings.Repeat("=", 60))
		printMigrations(cmd, "✓ Applied Migrations", applied)
		printMigrations(cmd, "○ Pending Migrations", pending)
		return nil
	},
}

func printMigrations(cmd *cobra.Command, title string, ms []database.Migration) {
	out := cmd.OutOrStdout()
	if len(ms) == 0 {
		fmt.Fprintf(out, "\n%s: (none)\n", title)
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, m := range ms {
		fmt.Fprintf(out, "  %s - %s\n", m.Version, m.Name)
	}
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
