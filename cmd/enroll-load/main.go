// Package main provides the enrollment load checker CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/mergington/internal/loadtest"
	"github.com/okian/mergington/pkg/logger"
	"github.com/spf13/cobra"
)

// Default configuration constants.
const (
	defaultStudents      = 500
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultGlobalTimeout = 10 * time.Minute
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logFormat string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:           "enroll-load",
		Short:         "Exercise the Mergington activities API under concurrent enrollment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log every unexpected response")
	cmd.AddCommand(runCmd())

	return cmd
}

func runCmd() *cobra.Command {
	var (
		cfg           loadtest.Config
		globalTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sign up, re-sign up and unregister generated students, then verify the roster",
		Long: `Run drives three concurrent phases against one activity:

  1. sign up every generated student (expects 200)
  2. sign each one up again (expects 400)
  3. unregister every student (expects 200)

and then checks that the activity roster matches the one seen before the run.

Examples:
  enroll-load run
  enroll-load run --activity "Math Club" --students 2000 --workers 32
  enroll-load run --url http://localhost:9000 --verbose
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), globalTimeout)
			defer cancel()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err := loadtest.Run(ctx, &cfg)
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8000", "Base URL of the service")
	cmd.Flags().StringVar(&cfg.Activity, "activity", "Chess Club", "Activity to enroll into")
	cmd.Flags().IntVar(&cfg.Students, "students", defaultStudents, "Number of generated students")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().StringVar(&cfg.Domain, "domain", "mergington.edu", "Email domain for generated students")
	cmd.Flags().DurationVar(&globalTimeout, "global-timeout", defaultGlobalTimeout, "Timeout for the whole run")

	return cmd
}
