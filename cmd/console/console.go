package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/buger/goterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/fss/cmd/util"
	"github.com/sidkik/fss/pkg/config"
	"github.com/sidkik/fss/pkg/control"
	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/logging"
)

// New creates a new `console` command.
func New() *cobra.Command {
	var logPath, pipeIn, pipeOut string
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Send commands to a running manager",
		Long: "Open an interactive session with a running manager.\n\n" +
			"Supported commands:\n" +
			"  add <source> <target>   start syncing a new pair\n" +
			"  cancel <source>         stop watching a pair\n" +
			"  status <source>         show the state of a pair\n" +
			"  sync <source>           resync every file in a pair\n" +
			"  shutdown                stop the manager",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(os.Stdin, os.Stdout, logPath, pipeIn, pipeOut); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	cmd.Flags().StringVarP(&logPath, "log", "l", "",
		"The file that commands and responses are appended to")
	cmd.Flags().StringVar(&pipeIn, "pipe-in", config.DefaultPipeIn,
		"The pipe that commands are written to")
	cmd.Flags().StringVar(&pipeOut, "pipe-out", config.DefaultPipeOut,
		"The pipe that responses are read from")
	if err := cmd.MarkFlagRequired("log"); err != nil {
		panic(err)
	}
	return cmd
}

func run(in io.Reader, out io.Writer, logPath, pipeIn, pipeOut string) error {
	logFile := logging.OpenFile(logPath, config.DefaultLogMaxSizeMB)
	defer logFile.Close()

	client, err := control.Dial(pipeIn, pipeOut)
	if err != nil {
		return errors.WithContext(err, "connect to manager")
	}
	defer client.Close()

	fmt.Fprintln(out, "fss console ready (type 'shutdown' to exit).")
	return session(in, out, client, logging.New(logFile))
}

type sender interface {
	Send(command string) ([]string, error)
}

// session reads commands from in until EOF or `shutdown`, printing each
// response to out.
func session(in io.Reader, out io.Writer, client sender, logger *logrus.Logger) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		logger.Info("Command " + input)
		lines, err := client.Send(input)
		if err != nil {
			return errors.WithContext(err, "send command")
		}

		fmt.Fprintln(out, "Manager says:")
		for _, line := range lines {
			fmt.Fprintln(out, colorize(line))
			logger.Info("Response " + line)
		}

		if input == "shutdown" {
			return nil
		}
	}
}

func colorize(line string) string {
	if strings.HasPrefix(line, "[ERROR]") {
		return goterm.Color(line, goterm.RED)
	}
	return line
}
