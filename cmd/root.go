// Package cmd contains the command line interface of the shop API
package cmd

import (
	"bitwise74/shop-api/config"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var rootCmd = &cobra.Command{
	Use:   "shop-api",
	Short: "Online shop backend",
	Long: `shop-api serves the catalog, cart, checkout and account endpoints of an
online shop over HTTP.

Configuration is read from .env, config.toml, the environment and the flags
below, in that order of increasing priority.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("app.log_level", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("db.driver", "sqlite", "Database driver (postgres or sqlite)")
	rootCmd.PersistentFlags().String("db.dsn", "database.db", "Database DSN, takes priority over db.host")

	rootCmd.AddCommand(serveCmd, purgeCmd, createAdminCmd)
}

// setup loads the configuration and installs the global logger
func setup(cmd *cobra.Command) (*config.Config, error) {
	makeLogger("info")

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		if config.IsMissingSecret(err) {
			return nil, fmt.Errorf("%w\n\nSet JWT_SECRET_KEY, for example to:\n%s", err, config.GenSecret())
		}
		return nil, fmt.Errorf("failed to load config, %w", err)
	}

	makeLogger(cfg.App.LogLevel)

	return cfg, nil
}

// makeLogger installs the global logger. Debug runs get the colored
// development output, everything else JSON.
func makeLogger(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()

	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString(gray + t.Format("15:04:05.000") + reset)
		}
		cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString(gray + ec.TrimmedPath() + reset)
		}
	}

	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		panic(errors.Join(errors.New("failed to build logger"), err))
	}
	zap.ReplaceGlobals(log)
}
