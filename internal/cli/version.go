package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graaaaa/teamstats/internal/appinfo"
	"github.com/graaaaa/teamstats/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appinfo.AppName, version.String())
			return err
		},
	}
}
