package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/gameaccess/internal/config"
	"github.com/okian/gameaccess/pkg/logger"
	"github.com/okian/gameaccess/pkg/metrics"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gameaccess",
		Short: "Game accessibility classifier",
		Long: "gameaccess predicts, for each game in a fixed catalog, whether a person can play it\n" +
			"and what support they need, from a demographic and clinical assessment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if p, _ := cmd.Flags().GetString("config"); p != "" {
				return os.Setenv(config.FileEnv, p)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (overrides "+config.FileEnv+")")

	root.AddCommand(newServeCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newSmokeCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads configuration and initialises the global logger writing
// to w.
func loadConfig(w io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.SetEnabled(cfg.MetricsEnabled)
	return cfg, nil
}
