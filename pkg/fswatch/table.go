package fswatch

import (
	"path/filepath"

	"github.com/sidkik/fss/pkg/errors"
)

// Handle returns the key that events for the directory are reported under.
// fsnotify names events by joining the watched path and the file name, so
// the cleaned path is what can be recovered from an event.
func Handle(dir string) string {
	return filepath.Clean(dir)
}

// Table maps watch handles back to the source paths that were registered.
// Entries are never removed.
type Table struct {
	sources map[string][]string
	count   int
	limit   int
}

// NewTable returns an empty Table that holds at most limit entries.
func NewTable(limit int) *Table {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Table{sources: map[string][]string{}, limit: limit}
}

// Add records that source is watched via handle.
func (t *Table) Add(handle, source string) error {
	for _, existing := range t.sources[handle] {
		if existing == source {
			return nil
		}
	}

	if t.Full() {
		return errors.ErrWatchLimit
	}
	t.sources[handle] = append(t.sources[handle], source)
	t.count++
	return nil
}

// Has returns whether any source is watched via handle.
func (t *Table) Has(handle string) bool {
	return len(t.sources[handle]) > 0
}

// Lookup returns the sources watched via handle.
func (t *Table) Lookup(handle string) []string {
	return t.sources[handle]
}

// Full returns whether the table has reached its limit.
func (t *Table) Full() bool {
	return t.count >= t.limit
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return t.count
}
