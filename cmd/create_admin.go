package cmd

import (
	"bitwise74/shop-api/db"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/security"
	"bitwise74/shop-api/pkg/validators"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	Long: `Create a verified admin account. When the email is already registered the
account is promoted instead, and its password is only replaced if --password
is given.

Examples:
  shop-api create-admin --email admin@shop.test --password hunter22`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if err := validators.EmailValidator(email); err != nil {
			return err
		}

		if password != "" {
			if err := validators.PasswordValidator(password); err != nil {
				return err
			}
		}

		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		conn, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open database, %w", err)
		}

		created, err := service.EnsureAdmin(cmd.Context(), conn, security.NewArgon(), email, password)
		if err != nil {
			return fmt.Errorf("failed to create admin, %w", err)
		}

		if created {
			zap.L().Info("Admin account created", zap.String("email", email))
		} else {
			zap.L().Info("Existing account promoted to admin", zap.String("email", email))
		}

		return nil
	},
}

func init() {
	createAdminCmd.Flags().String("email", "", "Email of the admin account")
	createAdminCmd.Flags().String("password", "", "Password of the admin account")
	createAdminCmd.MarkFlagRequired("email")
}
