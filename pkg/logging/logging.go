// Package logging configures the logrus loggers used by the manager and the
// console. Entries are rendered as `[YYYY-MM-DD HH:MM:SS] message key=value`
// lines and appended to a size-rotated log file.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimestampFormat is the layout of the timestamp that prefixes every line.
const TimestampFormat = "2006-01-02 15:04:05"

// VerboseEnv enables debug logging when set to "true".
const VerboseEnv = "FSS_LOG_VERBOSE"

// Formatter renders entries in the fss log line format.
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s", entry.Time.Format(TimestampFormat), entry.Message)

	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel:
		fmt.Fprintf(&b, " level=%s", entry.Level)
	}

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%s", key, formatValue(entry.Data[key]))
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func formatValue(val interface{}) string {
	var s string
	switch val := val.(type) {
	case error:
		s = val.Error()
	default:
		s = fmt.Sprint(val)
	}

	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// OpenFile returns a writer that appends to the log file at path, rotating
// it once it grows past maxSizeMB megabytes.
func OpenFile(path string, maxSizeMB int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
	}
}

// New returns a logger that writes formatted entries to out.
func New(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&Formatter{})
	logger.SetOutput(out)
	if os.Getenv(VerboseEnv) == "true" {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// WorkerReport logs the outcome of a single worker run.
func WorkerReport(logger logrus.FieldLogger, source, target string, pid int,
	op, status, details string) {
	logger.Infof("[%s] [%s] [%d] [%s] [%s] [%s]",
		source, target, pid, op, status, details)
}
