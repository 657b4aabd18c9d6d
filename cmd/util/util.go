package util

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/fss/pkg/errors"
)

// Variables mocked for unit testing.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError handles errors that are severe enough to terminate the
// program. Errors that carry a friendly message are shown as is.
func HandleFatalError(err error) {
	if friendly, ok := errors.RootCause(err).(errors.Friendly); ok {
		fmt.Fprintln(stderr, friendly.FriendlyMessage())
	} else {
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	log.WithError(err).Debug("Fatal error")
	exit(1)
}

// HandlePanic logs the panic and re-panics. It should be deferred at the top
// of every goroutine so that the panic is recorded before the process dies.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("panic", r).Error("Unexpected panic")
		panic(r)
	}
}
