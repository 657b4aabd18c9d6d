package protocol

import (
	"bufio"
	"io"
	"strings"

	"github.com/sidkik/fss/pkg/errors"
)

const (
	// ReportStart opens a framed block.
	ReportStart = "EXEC_REPORT_START"

	// ReportEnd closes a framed block. Readers stop consuming a response once
	// they see this line.
	ReportEnd = "EXEC_REPORT_END"
)

// WriteResponse writes lines to w as a single framed response.
func WriteResponse(w io.Writer, lines ...string) error {
	var b strings.Builder
	b.WriteString(ReportStart + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteString(ReportEnd + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ReadResponse reads one framed response from r and returns the lines between
// the markers. Lines before the first ReportStart are returned as well, so
// that a response missing its leading marker is still surfaced.
func ReadResponse(r *bufio.Reader) ([]string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == ReportEnd:
			return lines, nil
		case line == ReportStart:
		case line != "":
			lines = append(lines, line)
		}

		if err != nil {
			if err == io.EOF {
				return lines, errors.Errorf("response ended before %s", ReportEnd)
			}
			return lines, err
		}
	}
}
