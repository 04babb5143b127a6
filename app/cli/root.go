// Package cli holds the storefront command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mytheresa/storefront/app/config"
	"github.com/mytheresa/storefront/app/database"
	"github.com/mytheresa/storefront/app/log"
)

var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Grocery storefront catalog and admin API",
	Long:          "Serves the public product catalog and the password-protected admin API.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	versionTmpl := "storefront version {{.Version}}"
	if BuildTime != "" {
		versionTmpl += " (built " + BuildTime
		if GitCommit != "" {
			versionTmpl += ", commit " + GitCommit
		}
		versionTmpl += ")"
	}
	versionTmpl += "\n"
	rootCmd.SetVersionTemplate(versionTmpl)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default "+config.DefaultFile+" when present)")
}

// Execute runs the CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads and validates the configuration and applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	return cfg, nil
}

func connectDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.Open(cfg.DatabaseURL, log.GetLevel() == log.LevelDebug)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}
