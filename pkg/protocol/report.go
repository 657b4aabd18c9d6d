package protocol

import (
	"fmt"
	"io"
	"strings"
)

// Status is the outcome reported by a worker.
type Status string

const (
	// StatusSuccess means every file was synced.
	StatusSuccess Status = "SUCCESS"

	// StatusPartial means some, but not all, files were synced.
	StatusPartial Status = "PARTIAL"

	// StatusError means the worker ran but the operation failed.
	StatusError Status = "ERROR"

	// StatusFail means the worker never produced a report, e.g. because it
	// couldn't be started or it crashed.
	StatusFail Status = "FAIL"

	// StatusUnknown means the worker's output couldn't be parsed.
	StatusUnknown Status = "UNKNOWN"
)

const (
	statusPrefix  = "STATUS:"
	detailsPrefix = "DETAILS:"
	errorsPrefix  = "ERRORS:"

	noDetails = "No details"
	noOutput  = "No output from worker"
)

// IsFailure returns whether the status counts towards a pair's error count.
func (s Status) IsFailure() bool {
	return s != StatusSuccess
}

// Report is the parsed outcome of a single worker run.
type Report struct {
	Status  Status
	Details string
}

// FailedReport returns the report used when a worker couldn't be run at all.
func FailedReport(details string) Report {
	return Report{Status: StatusFail, Details: details}
}

// ParseReport extracts the report from a worker's standard output.
func ParseReport(output []byte) Report {
	if strings.TrimSpace(string(output)) == "" {
		return FailedReport(noOutput)
	}

	report := Report{Status: StatusUnknown, Details: noDetails}
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, statusPrefix):
			fields := strings.Fields(strings.TrimPrefix(line, statusPrefix))
			if len(fields) > 0 {
				report.Status = parseStatus(fields[0])
			}
		case strings.HasPrefix(line, detailsPrefix):
			if details := strings.TrimSpace(strings.TrimPrefix(line, detailsPrefix)); details != "" {
				report.Details = details
			}
		}
	}
	return report
}

func parseStatus(s string) Status {
	switch status := Status(s); status {
	case StatusSuccess, StatusPartial, StatusError, StatusFail:
		return status
	default:
		return StatusUnknown
	}
}

// WriteFullReport writes the report of a full-directory sync.
func WriteFullReport(w io.Writer, status Status, details string, errs []string) error {
	_, err := fmt.Fprintf(w, "%s\n%s", ReportStart, formatFields(status, details, errs))
	return err
}

// WriteFileReport writes the report of a single-file operation. Unlike
// WriteFullReport, there is no leading ReportStart marker.
func WriteFileReport(w io.Writer, status Status, details string, errs []string) error {
	_, err := io.WriteString(w, formatFields(status, details, errs))
	return err
}

func formatFields(status Status, details string, errs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusPrefix, status)
	fmt.Fprintf(&b, "%s %s\n", detailsPrefix, details)
	if len(errs) > 0 {
		fmt.Fprintf(&b, "%s %s\n", errorsPrefix, strings.Join(errs, "; "))
	}
	b.WriteString(ReportEnd + "\n")
	return b.String()
}
