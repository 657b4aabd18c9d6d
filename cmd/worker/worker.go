package worker

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/fss/cmd/util"
	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/protocol"
	"github.com/sidkik/fss/pkg/worker"
)

// New creates a new `worker` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use: "worker <source> <target> <file|ALL> <operation>",
		Short: "Sync a single file or a whole directory. This command is run " +
			"by the manager and should not be used directly.",
		Args:   cobra.ExactArgs(4),
		Hidden: true,
		Run: func(_ *cobra.Command, args []string) {
			err := worker.Run(os.Stdout, args[0], args[1], args[2], protocol.Operation(args[3]))
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "write report"))
			}
		},
	}
}
