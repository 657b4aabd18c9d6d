package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sidkik/fss/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of fss",
		Long:  "Print the version of fss, as a git commit hash.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fss version: %s\n", version.Version)
		},
	}
}
