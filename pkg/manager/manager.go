// Package manager implements the fss orchestrator: a single event loop that
// owns the pair registry, the task queue and the watch table, and that runs
// synchronization work in a capped pool of worker processes.
//
// All state is mutated on the goroutine that calls Run. Helper goroutines
// only perform I/O, and hand their results to the loop over channels.
package manager

import (
	"context"
	"io"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/fss/pkg/config"
	"github.com/sidkik/fss/pkg/fswatch"
	"github.com/sidkik/fss/pkg/queue"
	"github.com/sidkik/fss/pkg/registry"
)

// fs is used for mock tests.
var fs = afero.NewOsFs()

// Watcher is the source of filesystem changes. It's implemented by
// fswatch.Watcher.
type Watcher interface {
	Add(source string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Translate(fsnotify.Event) (fswatch.Change, bool)
	Close() error
}

type state int

const (
	running state = iota
	shuttingDown
)

// Config contains the dependencies of a Manager.
type Config struct {
	Settings config.Settings

	// WorkerPath is the executable that's run with the `worker` subcommand
	// for each task.
	WorkerPath string

	Watcher Watcher

	// Responses receives the framed responses to commands.
	Responses io.Writer

	Logger *logrus.Logger
	Clock  clockwork.Clock
}

// Manager is the orchestrator.
type Manager struct {
	registry *registry.Registry
	queue    *queue.Ring

	// deferred holds filesystem-event tasks that arrived while every worker
	// slot was taken. It's served before queue.
	deferred *queue.Ring

	watcher    Watcher
	responses  io.Writer
	log        *logrus.Logger
	workerPath string

	workers     int
	active      int
	completions chan completion

	state state
}

// New creates a Manager. No pairs are registered until LoadPairs is called.
func New(cfg Config) *Manager {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	workers := cfg.Settings.Workers
	if workers < 1 {
		workers = config.DefaultWorkers
	}

	capacity := cfg.Settings.QueueCapacity
	if capacity < 2 {
		capacity = queue.DefaultCapacity
	}

	return &Manager{
		registry:    registry.New(clock),
		queue:       queue.New(capacity),
		deferred:    queue.New(capacity),
		watcher:     cfg.Watcher,
		responses:   cfg.Responses,
		log:         cfg.Logger,
		workerPath:  cfg.WorkerPath,
		workers:     workers,
		completions: make(chan completion, workers),
	}
}

// LoadPairs registers the configured pairs. Each new pair gets a watch and an
// initial full sync, which starts once Run is called. Duplicate sources are
// skipped.
func (m *Manager) LoadPairs(pairs []config.Pair) {
	for _, pair := range pairs {
		if m.registry.Add(pair.Source, pair.Target) == registry.Duplicate {
			m.log.WithField("source", pair.Source).Info("[CONFIG] Skipped duplicate")
			continue
		}

		m.log.WithFields(logrus.Fields{
			"source": pair.Source,
			"target": pair.Target,
		}).Info("[CONFIG] Loaded pair")
		m.enqueue(queue.FullSync(pair.Source, pair.Target))
		m.watch(pair.Source)
	}
}

// Run processes commands, filesystem events and worker completions until a
// `shutdown` command is received or ctx is cancelled. Workers that are still
// running when Run returns are left to finish on their own.
func (m *Manager) Run(ctx context.Context, commands <-chan string) {
	events := m.watcher.Events()
	watchErrors := m.watcher.Errors()

	m.dispatch()
	for m.state == running {
		select {
		case line, ok := <-commands:
			if !ok {
				m.log.Warn("Control channel closed")
				commands = nil
				continue
			}
			m.handleCommand(line)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.handleFileEvent(event)

		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			m.log.WithError(err).Warn("[WATCH] Watcher error")

		case c := <-m.completions:
			m.handleCompletion(c)
			m.drainCompletions()

		case <-ctx.Done():
			m.log.Info("[MANAGER] Interrupted")
			m.state = shuttingDown
			continue
		}

		m.dispatch()
	}

	if m.active > 0 {
		m.log.WithField("workers", m.active).Info(
			"[MANAGER] Exiting with workers still running")
	}
	m.logPairs()
	m.log.Info("[MANAGER] Stopped")
}

// Close releases the watches.
func (m *Manager) Close() error {
	return m.watcher.Close()
}

func (m *Manager) enqueue(task queue.Task) queue.EnqueueResult {
	result := m.queue.Enqueue(task)
	if result == queue.Dropped {
		m.log.WithFields(logrus.Fields{
			"task":     task,
			"capacity": m.queue.Cap(),
		}).Warn("[QUEUE] Full. Task dropped")
	} else {
		m.log.WithField("task", task).Debug("[QUEUE] Task queued")
	}
	return result
}

// logPairs records the final state of every pair.
func (m *Manager) logPairs() {
	for _, pair := range m.registry.Pairs() {
		m.log.WithFields(logrus.Fields{
			"source": pair.Source,
			"target": pair.Target,
			"active": pair.Active,
			"errors": pair.Errors,
			"result": pair.LastResult,
		}).Info("[MANAGER] Pair summary")
	}
}

func (m *Manager) watch(source string) {
	if err := m.watcher.Add(source); err != nil {
		m.log.WithError(err).WithField("source", source).Warn(
			"[WATCH] Failed to watch directory. Live changes won't be synced")
		return
	}
	m.log.WithField("source", source).Info("[WATCH] Watching directory")
}
