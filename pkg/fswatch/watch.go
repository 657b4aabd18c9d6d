// Package fswatch subscribes to changes in source directories and maps the
// resulting events back to the sources they belong to.
package fswatch

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/protocol"
)

// DefaultLimit is the maximum number of source directories that are watched
// at once.
const DefaultLimit = 100

var fs = afero.NewOsFs()

// Change is a filesystem event translated into a worker operation.
type Change struct {
	// Sources are the registered source paths the changed file lives in.
	// There's usually only one, but two different spellings of the same
	// directory (e.g. `./a` and `a`) are distinct pairs that share a watch.
	Sources []string

	// File is the name of the changed file relative to the source directory.
	File string

	Operation protocol.Operation
}

// Watcher watches source directories, non-recursively, for files being
// created, written, or removed.
type Watcher struct {
	watcher *fsnotify.Watcher
	table   *Table
}

// New creates a Watcher that watches at most limit directories.
func New(limit int) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}
	return &Watcher{watcher: watcher, table: NewTable(limit)}, nil
}

// Add starts watching source. Errors aren't fatal to the caller: a source
// that can't be watched is still synced by full syncs.
func (w *Watcher) Add(source string) error {
	fi, err := fs.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: source}
		}
		return errors.WithContext(err, "stat")
	}

	if !fi.IsDir() {
		return errors.NotADirectory{Path: source}
	}

	handle := Handle(source)
	if !w.table.Has(handle) {
		if w.table.Full() {
			return errors.ErrWatchLimit
		}

		if err := w.watcher.Add(handle); err != nil {
			return errors.WithContext(err, "add watch")
		}
	}

	if err := w.table.Add(handle, source); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"source":  source,
		"watched": w.table.Len(),
	}).Debug("Watching directory")
	return nil
}

// Events returns the raw events from the underlying watcher.
func (w *Watcher) Events() <-chan fsnotify.Event {
	return w.watcher.Events
}

// Errors returns errors from the underlying watcher.
func (w *Watcher) Errors() <-chan error {
	return w.watcher.Errors
}

// Translate converts the event into a Change. It returns false if the event
// doesn't need to be synced, either because it's not under a watched
// source, or because it's an operation that's not synced.
func (w *Watcher) Translate(event fsnotify.Event) (Change, bool) {
	op, ok := Operation(event.Op)
	if !ok {
		return Change{}, false
	}

	sources := w.table.Lookup(Handle(filepath.Dir(event.Name)))
	if len(sources) == 0 {
		return Change{}, false
	}

	// Only files directly under the source are synced, so new
	// subdirectories are ignored.
	if op != protocol.Deleted {
		if fi, err := fs.Stat(event.Name); err == nil && fi.IsDir() {
			return Change{}, false
		}
	}

	return Change{
		Sources:   sources,
		File:      filepath.Base(event.Name),
		Operation: op,
	}, true
}

// Close releases the watches.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Operation maps the bits of an fsnotify operation to the worker operation.
// A deletion takes precedence over a modification, which takes precedence
// over a creation. Renames are treated as deletions because the new name
// triggers a separate Create event.
func Operation(op fsnotify.Op) (protocol.Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
		return protocol.Deleted, true
	case op.Has(fsnotify.Write):
		return protocol.Modified, true
	case op.Has(fsnotify.Create):
		return protocol.Added, true
	default:
		return "", false
	}
}
