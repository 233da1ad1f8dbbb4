package cli

import (
	"github.com/spf13/cobra"

	"github.com/aristath/mvt-analytics/internal/di"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schemas and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.InitializeDatabases(opts.app.cfg, opts.app.log)
			if err != nil {
				return err
			}
			defer container.Close()

			cmd.Printf("Migrated %s and %s\n", container.AnalyticsDB.Path(), container.CacheDB.Path())
			return nil
		},
	}
}
