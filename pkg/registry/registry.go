// Package registry tracks the directory pairs monitored by the manager.
//
// The Registry isn't safe for concurrent use. It's owned by the manager's
// event loop, which is the only goroutine that reads or mutates it.
package registry

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sidkik/fss/pkg/protocol"
)

// Result is the outcome of the most recent sync of a pair.
type Result string

const (
	// ResultPending means the pair hasn't been synced yet.
	ResultPending Result = "PENDING"

	// ResultSuccess means the last sync copied every file.
	ResultSuccess Result = "SUCCESS"

	// ResultPartial means the last sync copied only some files.
	ResultPartial Result = "PARTIAL"

	// ResultError means the last sync failed.
	ResultError Result = "ERROR"
)

// Pair is a monitored source directory and the target it's mirrored into.
type Pair struct {
	Source string
	Target string

	// Active is cleared when the pair is cancelled. Inactive pairs stay in
	// the registry so that their status can still be queried.
	Active bool

	// Syncing is set while a manual sync of the pair is outstanding.
	Syncing bool

	Errors     int
	LastResult Result
	LastSync   time.Time
}

// AddResult is returned by Registry.Add.
type AddResult int

const (
	// Created means a new pair was registered.
	Created AddResult = iota

	// Duplicate means the source was already registered, and nothing
	// changed.
	Duplicate
)

// ManualSyncResult is returned by Registry.BeginManualSync.
type ManualSyncResult int

const (
	// Started means the pair is now marked as syncing.
	Started ManualSyncResult = iota

	// NotMonitored means the source is unknown or was cancelled.
	NotMonitored

	// AlreadySyncing means a manual sync of the pair is still outstanding.
	AlreadySyncing
)

// Registry is the set of pairs, keyed by the exact source path string that
// was used to register them. Paths aren't canonicalized, so `./a` and `a`
// are different pairs.
type Registry struct {
	pairs map[string]*Pair
	order []string
	clock clockwork.Clock
}

// New returns an empty Registry that timestamps syncs with clock.
func New(clock clockwork.Clock) *Registry {
	return &Registry{
		pairs: map[string]*Pair{},
		clock: clock,
	}
}

// Add registers a new pair.
func (r *Registry) Add(source, target string) AddResult {
	if _, ok := r.pairs[source]; ok {
		return Duplicate
	}

	r.pairs[source] = &Pair{
		Source:     source,
		Target:     target,
		Active:     true,
		LastResult: ResultPending,
		LastSync:   r.clock.Now(),
	}
	r.order = append(r.order, source)
	return Created
}

// Find returns a copy of the pair registered for source.
func (r *Registry) Find(source string) (Pair, bool) {
	pair, ok := r.pairs[source]
	if !ok {
		return Pair{}, false
	}
	return *pair, true
}

// Cancel deactivates the pair. It returns false if the pair doesn't exist or
// was already cancelled.
func (r *Registry) Cancel(source string) bool {
	pair, ok := r.pairs[source]
	if !ok || !pair.Active {
		return false
	}
	pair.Active = false
	return true
}

// BeginManualSync marks the pair as syncing. The target is returned when the
// sync was started.
func (r *Registry) BeginManualSync(source string) (ManualSyncResult, string) {
	pair, ok := r.pairs[source]
	if !ok || !pair.Active {
		return NotMonitored, ""
	}

	if pair.Syncing {
		return AlreadySyncing, ""
	}

	pair.Syncing = true
	return Started, pair.Target
}

// EndManualSync clears the syncing flag without recording a result. It's
// used when a manual sync was abandoned before a worker ran.
func (r *Registry) EndManualSync(source string) {
	if pair, ok := r.pairs[source]; ok {
		pair.Syncing = false
	}
}

// ApplyReport folds a worker's status into the pair. It returns false if
// the pair doesn't exist.
func (r *Registry) ApplyReport(source string, status protocol.Status, manual bool) bool {
	pair, ok := r.pairs[source]
	if !ok {
		return false
	}

	if status.IsFailure() {
		pair.Errors++
	}
	pair.LastResult = resultFor(status)
	pair.LastSync = r.clock.Now()
	if manual {
		pair.Syncing = false
	}
	return true
}

// Pairs returns copies of all pairs in the order they were added.
func (r *Registry) Pairs() (pairs []Pair) {
	for _, source := range r.order {
		pairs = append(pairs, *r.pairs[source])
	}
	return pairs
}

func resultFor(status protocol.Status) Result {
	switch status {
	case protocol.StatusSuccess:
		return ResultSuccess
	case protocol.StatusPartial:
		return ResultPartial
	default:
		return ResultError
	}
}
