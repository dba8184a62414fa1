package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"flywrapper/internal/selfmanifest"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the package name and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), selfmanifest.Version())
			return nil
		},
	}
}
