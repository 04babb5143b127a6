package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytheresa/storefront/app/bootstrap"
	"github.com/mytheresa/storefront/app/database"
	"github.com/mytheresa/storefront/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default admin and categories",
	Long: `Create the default admin account and categories when they are missing.

Safe to run repeatedly. Migrations are applied first.`,
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

		if _, err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}

		seeder := bootstrap.NewSeeder(models.NewAdminsRepository(db), models.NewCategoriesRepository(db))
		res, err := seeder.Seed(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.AdminCreated {
			fmt.Fprintf(out, "✓ Created admin %q\n", bootstrap.DefaultAdminUsername)
		}
		fmt.Fprintf(out, "✓ Created %d categories\n", res.CategoriesCreated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
