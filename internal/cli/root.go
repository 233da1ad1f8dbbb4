// Package cli implements the mvt-analytics command line.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/mvt-analytics/internal/config"
	"github.com/aristath/mvt-analytics/pkg/logger"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

type rootOptions struct {
	logLevel string
	dataDir  string
	app      *app
}

// NewRootCommand builds the command tree. serve runs when no subcommand is given.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mvt-analytics",
		Short:         "Marketing budget allocation and projection service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app != nil {
				return nil
			}
			if opts.dataDir != "" {
				if err := os.Setenv("MVT_DATA_DIR", opts.dataDir); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}

			opts.app = &app{
				cfg: cfg,
				log: logger.New(logger.Config{
					Level:  cfg.LogLevel,
					Pretty: cfg.LogPretty,
					Output: cmd.ErrOrStderr(),
				}),
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Override MVT_DATA_DIR")

	serve := newServeCmd(opts)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newOptimizeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newBackupCmd(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
