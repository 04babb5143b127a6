package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mytheresa/storefront/app/auth"
	"github.com/mytheresa/storefront/app/database"
	"github.com/mytheresa/storefront/models"
)

var (
	flagUsername string
	flagFullName string
	flagPassword string
)

// readPassword prompts without echo. Replaced in tests.
var readPassword = func(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account.

Without --password you are prompted for the password twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(flagUsername)
		if username == "" {
			return errors.New("--username is required")
		}
		password, err := passwordFromFlagOrPrompt(cmd, "Password")
		if err != nil {
			return err
		}
		digest, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

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

		admin := &models.Admin{
			Username: username,
			Password: digest,
			IsActive: true,
		}
		if name := strings.TrimSpace(flagFullName); name != "" {
			admin.FullName = &name
		}
		if err := models.NewAdminsRepository(db).CreateAdmin(cmd.Context(), admin); err != nil {
			if errors.Is(err, models.ErrDuplicate) {
				return fmt.Errorf("admin %q already exists", username)
			}
			return fmt.Errorf("failed to create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Admin created\n  Username: %s\n  ID: %s\n", admin.Username, admin.ID)
		return nil
	},
}

var adminSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Replace an admin's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(flagUsername)
		if username == "" {
			return errors.New("--username is required")
		}
		password, err := passwordFromFlagOrPrompt(cmd, "New password")
		if err != nil {
			return err
		}
		digest, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, cleanup, err := connectDB(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := models.NewAdminsRepository(db).UpdatePassword(cmd.Context(), username, digest); err != nil {
			if errors.Is(err, models.ErrAdminNotFound) {
				return fmt.Errorf("admin %q not found", username)
			}
			return fmt.Errorf("failed to update password: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Password updated for %s\n", username)
		return nil
	},
}

func passwordFromFlagOrPrompt(cmd *cobra.Command, prompt string) (string, error) {
	if cmd.Flags().Changed("password") {
		if flagPassword == "" {
			return "", errors.New("password cannot be empty")
		}
		return flagPassword, nil
	}

	password, err := readPassword(prompt)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	confirm, err := readPassword("Confirm " + strings.ToLower(prompt))
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func init() {
	for _, c := range []*cobra.Command{adminCreateCmd, adminSetPasswordCmd} {
		c.Flags().StringVarP(&flagUsername, "username", "u", "", "admin username")
		c.Flags().StringVar(&flagPassword, "password", "", "password (prompted when omitted)")
		adminCmd.AddCommand(c)
	}
	adminCreateCmd.Flags().StringVar(&flagFullName, "full-name", "", "display name")

	rootCmd.AddCommand(adminCmd)
}
