package protocol

// Operation is the tag passed to a worker describing what to synchronize.
type Operation string

const (
	// Full copies every regular file in the source directory.
	Full Operation = "FULL"

	// Added copies a single file that was created in the source directory.
	Added Operation = "ADDED"

	// Modified copies a single file that was changed in the source directory.
	Modified Operation = "MODIFIED"

	// Deleted removes a single file from the target directory.
	Deleted Operation = "DELETED"
)

// AllFiles is the file name argument used together with Full.
const AllFiles = "ALL"

// WorkerArgs returns the positional arguments for a worker invocation.
func WorkerArgs(source, target, file string, op Operation) []string {
	return []string{source, target, file, string(op)}
}
