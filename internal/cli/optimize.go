package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/mvt-analytics/internal/di"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
)

func newOptimizeCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the budget optimizer on a JSON request and print the result",
		Long: `Reads {"industry", "constraints", "selected_channels"} from --file
("-" for stdin) and prints the optimization result as JSON. No database is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			cat, err := di.LoadCatalog(a.cfg.CatalogFile, a.log)
			if err != nil {
				return err
			}
			engine := optimization.NewEngine(cat, optimization.Options{
				FallbackOnInvalid: a.cfg.Optimizer.FallbackOnInvalid,
			}, a.log)

			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open request: %w", err)
				}
				defer f.Close()
				in = f
			}

			return runOptimize(cmd.Context(), engine, in, cmd.OutOrStdout(), pretty)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request JSON file, or - for stdin")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// runOptimize decodes one request, optimizes it and encodes the result.
func runOptimize(ctx context.Context, engine *optimization.Engine, in io.Reader, out io.Writer, pretty bool) error {
	var req optimization.Request
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	result, err := engine.Optimize(ctx, req.Constraints, req.Industry, req.SelectedChannels)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
