package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/mvt-analytics/internal/di"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the databases once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.app.cfg
			cfg.Backup.Enabled = true

			container, jobs, err := di.Wire(cfg, opts.app.log)
			if err != nil {
				return err
			}
			defer container.Close()

			if err := jobs.Backup.Run(); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			cmd.Printf("Backup written to %s\n", cfg.Backup.Dir)
			return nil
		},
	}
}
