package manager

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/sidkik/fss/pkg/fswatch"
	"github.com/sidkik/fss/pkg/queue"
)

func (m *Manager) handleFileEvent(event fsnotify.Event) {
	change, ok := m.watcher.Translate(event)
	if !ok {
		return
	}

	m.log.WithFields(logrus.Fields{
		"file":      event.Name,
		"operation": change.Operation,
	}).Debug("[WATCH] Event detected")
	m.handleChange(change)
}

// handleChange starts a single-file worker for every active pair affected by
// the change. If all worker slots are taken, the task is deferred until one
// frees up.
func (m *Manager) handleChange(change fswatch.Change) {
	for _, source := range change.Sources {
		pair, ok := m.registry.Find(source)
		if !ok || !pair.Active {
			continue
		}

		task := queue.Task{
			Source:    source,
			Target:    pair.Target,
			File:      change.File,
			Operation: change.Operation,
		}

		if m.active < m.workers {
			m.run(task)
			continue
		}

		if m.deferred.Enqueue(task) == queue.Dropped {
			m.log.WithField("task", task).Warn("[WATCH] Backlog full. Change dropped")
		} else {
			m.log.WithField("task", task).Debug("[WATCH] All workers busy. Change deferred")
		}
	}
}
