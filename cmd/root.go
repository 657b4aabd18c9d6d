package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/fss/cmd/console"
	"github.com/sidkik/fss/cmd/manager"
	"github.com/sidkik/fss/cmd/util"
	"github.com/sidkik/fss/cmd/version"
	"github.com/sidkik/fss/cmd/worker"
	"github.com/sidkik/fss/pkg/logging"
)

// Execute runs the main CLI process.
func Execute() {
	// Debug events are logged, rather than just Info and above, when the
	// verbose environment variable is set to `true`.
	if os.Getenv(logging.VerboseEnv) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "fss",
		Short:        "Keep pairs of directories in sync",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		console.New(),
		manager.New(),
		version.New(),
		worker.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
