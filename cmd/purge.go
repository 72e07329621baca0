package cmd

import (
	"bitwise74/shop-api/db"
	"bitwise74/shop-api/internal/service"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete unverified accounts once",
	Long: `Delete every account that did not verify its email within cleanup.grace,
together with its cart, orders and verification code. serve runs the same
sweep on cleanup.schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		conn, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open database, %w", err)
		}

		n, err := service.PurgeUnverified(cmd.Context(), conn, cfg.Cleanup.Grace)
		if err != nil {
			return fmt.Errorf("failed to purge accounts, %w", err)
		}

		zap.L().Info("Unverified accounts purged", zap.Int64("purged", n), zap.Duration("grace", cfg.Cleanup.Grace))
		return nil
	},
}
