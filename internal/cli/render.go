package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graaaaa/teamstats/internal/config"
	"github.com/graaaaa/teamstats/internal/sqlq"
	"github.com/graaaaa/teamstats/internal/store"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	Teams []string
	Stats []string
	JSON  bool
}

// NewRenderCommand creates the render command, which prints the statement
// GET /teams/stats would run without connecting to a database.
func NewRenderCommand(root *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the SQL and parameters for a stats query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			stmt, err := sqlq.StatsQuery{
				Table:       cfg.Tables.Stats,
				Columns:     opts.Stats,
				Teams:       opts.Teams,
				Placeholder: store.PlaceholderFor(cfg.Database.Driver),
			}.Build()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"sql": stmt.SQL, "args": argsOrEmpty(stmt.Args)})
			}
			fmt.Fprintln(out, stmt.SQL)
			for i, a := range stmt.Args {
				fmt.Fprintf(out, "  %d: %q\n", i+1, a)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Teams, "team", "t", nil, "team to filter on (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.Stats, "stat", "s", nil, "stat column to project (repeatable)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print as JSON")

	return cmd
}

func argsOrEmpty(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}
