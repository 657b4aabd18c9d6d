package manager

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sidkik/fss/cmd/util"
	"github.com/sidkik/fss/pkg/config"
	"github.com/sidkik/fss/pkg/control"
	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/fswatch"
	"github.com/sidkik/fss/pkg/logging"
	fssManager "github.com/sidkik/fss/pkg/manager"
)

type flags struct {
	settingsPath string
	logPath      string
	pairsPath    string
	workers      int
	save         bool
}

// New creates a new `manager` command.
func New() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "manager",
		Short: "Start the file synchronization daemon",
		Long: "Start the file synchronization daemon.\n\n" +
			"The manager mirrors every source directory listed in the pair file " +
			"into its target, and keeps them in sync as files change. Use " +
			"`fss console` to add, cancel, inspect and resync pairs while it's " +
			"running.",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			settings, err := loadSettings(cmd, f)
			if err != nil {
				util.HandleFatalError(err)
			}

			if err := run(settings); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	cmd.Flags().StringVar(&f.settingsPath, "settings", config.SettingsPath,
		"The path to the settings file")
	cmd.Flags().StringVarP(&f.logPath, "log", "l", config.DefaultLogPath,
		"The file that events and worker reports are appended to")
	cmd.Flags().StringVarP(&f.pairsPath, "config", "c", config.DefaultPairsPath,
		"The file listing the `source target` pairs to sync")
	cmd.Flags().IntVarP(&f.workers, "workers", "n", config.DefaultWorkers,
		"The maximum number of workers that run at once")
	cmd.Flags().BoolVar(&f.save, "save-settings", false,
		"Write the effective settings to the settings file before starting")
	return cmd
}

// loadSettings parses the settings file, and overrides it with any flags that
// were explicitly set. If requested, the result is written back to the
// settings file so that later runs don't need the flags.
func loadSettings(cmd *cobra.Command, f flags) (config.Settings, error) {
	settings, err := config.ParseSettings(f.settingsPath)
	if err != nil {
		return config.Settings{}, errors.WithContext(err, "parse settings")
	}

	if cmd.Flags().Changed("log") {
		settings.LogPath = f.logPath
	}
	if cmd.Flags().Changed("config") {
		settings.PairsPath = f.pairsPath
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = f.workers
	}

	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}

	if f.save {
		if err := config.WriteSettings(f.settingsPath, settings); err != nil {
			return config.Settings{}, errors.WithContext(err, "save settings")
		}
	}
	return settings, nil
}

func run(settings config.Settings) error {
	pairs, err := config.ParsePairs(settings.PairsPath)
	if err != nil {
		if _, ok := errors.RootCause(err).(errors.FileNotFound); ok {
			return errors.NewFriendlyError("The pair file %q doesn't exist.\n"+
				"Create it with one `source target` pair per line, or choose "+
				"a different file with -c.", settings.PairsPath)
		}
		return errors.WithContext(err, "parse pairs")
	}

	logFile := logging.OpenFile(settings.LogPath, settings.LogMaxSizeMB)
	defer logFile.Close()
	logger := logging.New(io.MultiWriter(os.Stdout, logFile))
	logger.Info("[MANAGER STARTED]")

	workerPath, err := os.Executable()
	if err != nil {
		return errors.WithContext(err, "get executable path")
	}

	watcher, err := fswatch.New(settings.WatchLimit)
	if err != nil {
		return errors.WithContext(err, "start watcher")
	}

	channel, err := control.Listen(settings.PipeIn, settings.PipeOut)
	if err != nil {
		watcher.Close()
		return errors.WithContext(err, "create control pipes")
	}
	defer channel.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := fssManager.New(fssManager.Config{
		Settings:   settings,
		WorkerPath: workerPath,
		Watcher:    watcher,
		Responses:  channel.Responses(),
		Logger:     logger,
	})
	defer m.Close()

	m.LoadPairs(pairs)
	m.Run(ctx, control.ReadLines(ctx, channel.Commands()))
	return nil
}
