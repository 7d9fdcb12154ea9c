package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/gameaccess/internal/smoketest"
	"github.com/okian/gameaccess/pkg/logger"
	"github.com/spf13/cobra"
)

// defaultSmokeTimeout bounds a whole smoke run.
const defaultSmokeTimeout = 10 * time.Minute

func newSmokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Submit random profiles to a running server and verify the responses",
		Example: "  gameaccess smoke\n" +
			"  gameaccess smoke --url http://localhost:8080 --profiles 5000 --workers 16",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &smoketest.Config{}
			cfg.BaseURL, _ = cmd.Flags().GetString("url")
			cfg.Profiles, _ = cmd.Flags().GetInt("profiles")
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
			cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
			cfg.OutputFile, _ = cmd.Flags().GetString("output")
			cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
			return runSmoke(cmd, cfg)
		},
	}
	cmd.Flags().String("url", smoketest.DefaultBaseURL, "Base URL of the service")
	cmd.Flags().Int("profiles", smoketest.DefaultProfiles, "Number of profiles to generate and submit")
	cmd.Flags().Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
	cmd.Flags().Duration("timeout", smoketest.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().String("output", "", "Write the generated profiles to this JSON file")
	cmd.Flags().Bool("verbose", false, "Log every classified profile")
	return cmd
}

func runSmoke(cmd *cobra.Command, cfg *smoketest.Config) error {
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultSmokeTimeout)
	defer cancel()

	stats, err := smoketest.Run(ctx, cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d/%d profiles verified in %s\n",
		stats.RunID, stats.Succeeded, stats.Submitted, stats.Duration.Round(time.Millisecond))
	return err
}
