package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytheresa/storefront/app/database"
	"github.com/mytheresa/storefront/app/log"
	"github.com/mytheresa/storefront/app/server"
)

var (
	// Flags that override config file/env vars
	flagHost         string
	flagPort         int
	flagDatabaseURL  string
	flagUploadDir    string
	flagSessionStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront server",
	Long: `Start the storefront HTTP server.

Pending migrations are applied before the listener opens. The server stops
gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("host") {
			cfg.Host = flagHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = flagPort
		}
		if cmd.Flags().Changed("database-url") {
			cfg.DatabaseURL = flagDatabaseURL
		}
		if cmd.Flags().Changed("upload-dir") {
			cfg.UploadDir = flagUploadDir
		}
		if cmd.Flags().Changed("session-store") {
			cfg.SessionStore = flagSessionStore
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		db, cleanup, err := connectDB(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		applied, err := database.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}
		if applied > 0 {
			log.Info("applied migrations", "count", applied)
		}

		srv := server.New(cfg, db)
		defer srv.Close()

		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagHost, "host", "", "listen host")
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "listen port")
	serveCmd.Flags().StringVar(&flagDatabaseURL, "database-url", "", "postgres:// or sqlite:// URL")
	serveCmd.Flags().StringVar(&flagUploadDir, "upload-dir", "", "directory for uploaded product images")
	serveCmd.Flags().StringVar(&flagSessionStore, "session-store", "", "memory or database")

	rootCmd.AddCommand(serveCmd)
}
