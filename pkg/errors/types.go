package errors

import (
	"fmt"
)

// ErrWatchLimit is returned when the watch table has no room for another
// source directory.
var ErrWatchLimit = New("watch limit reached")

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// NotADirectory represents a path that exists but can't be synced because
// it isn't a directory.
type NotADirectory struct {
	Path string
}

func (err NotADirectory) Error() string {
	return fmt.Sprintf("%q is not a directory", err.Path)
}
