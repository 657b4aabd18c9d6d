package manager

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sidkik/fss/pkg/logging"
	"github.com/sidkik/fss/pkg/protocol"
	"github.com/sidkik/fss/pkg/queue"
	"github.com/sidkik/fss/pkg/registry"
)

const invalidCommand = "Invalid or unsupported command."

func (m *Manager) handleCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	m.log.WithField("command", line).Debug("Received command")

	var response []string
	switch {
	case fields[0] == "add" && len(fields) == 3:
		response = m.add(fields[1], fields[2])
	case fields[0] == "cancel" && len(fields) == 2:
		response = m.cancel(fields[1])
	case fields[0] == "status" && len(fields) == 2:
		response = m.status(fields[1])
	case fields[0] == "sync" && len(fields) == 2:
		response = m.sync(fields[1])
	case fields[0] == "shutdown" && len(fields) == 1:
		m.log.Info("[MANAGER] Shutting down...")
		m.state = shuttingDown
		response = []string{"Shutting down manager..."}
	default:
		m.log.WithField("command", line).Warn("[COMMAND ERROR] Unknown input")
		response = []string{invalidCommand}
	}

	if err := protocol.WriteResponse(m.responses, response...); err != nil {
		m.log.WithError(err).Error("Failed to write response")
	}
}

func (m *Manager) add(source, target string) []string {
	for _, dir := range []struct{ kind, path string }{
		{"Source", source},
		{"Target", target},
	} {
		if msg, ok := checkDir(dir.kind, dir.path); !ok {
			m.log.WithField("path", dir.path).Warn("[ADD] Failed. " + msg)
			return []string{"[ERROR] " + msg}
		}
	}

	if m.registry.Add(source, target) == registry.Duplicate {
		m.log.WithField("source", source).Info("[ADD] Duplicate ignored")
		return []string{fmt.Sprintf("Already monitored: %s", source)}
	}

	m.log.WithFields(logrus.Fields{
		"source": source,
		"target": target,
	}).Info("[ADD] New pair")

	response := []string{fmt.Sprintf("Added directory: %s -> %s", source, target)}
	if m.enqueue(queue.FullSync(source, target)) == queue.Dropped {
		response = append(response,
			"[ERROR] Queue full, the initial sync was dropped. Run `sync` to retry.")
	}
	m.watch(source)
	return response
}

func checkDir(kind, path string) (string, bool) {
	fi, err := fs.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Sprintf("%s directory does not exist: %s", kind, path), false
	case err != nil:
		return fmt.Sprintf("%s directory can't be accessed: %s (%s)", kind, path, err), false
	case !fi.IsDir():
		return fmt.Sprintf("%s is not a directory: %s", kind, path), false
	}
	return "", true
}

func (m *Manager) cancel(source string) []string {
	if !m.registry.Cancel(source) {
		return []string{fmt.Sprintf("Directory not monitored: %s", source)}
	}

	m.log.WithField("source", source).Info("[CANCEL] Monitoring stopped")
	return []string{fmt.Sprintf("Monitoring stopped for %s", source)}
}

func (m *Manager) status(source string) []string {
	pair, ok := m.registry.Find(source)
	if !ok {
		return []string{fmt.Sprintf("Directory not monitored: %s", source)}
	}

	state := "Active"
	if !pair.Active {
		state = "Inactive"
	}

	return []string{
		fmt.Sprintf("Directory: %s", pair.Source),
		fmt.Sprintf("Target: %s", pair.Target),
		fmt.Sprintf("Last Sync: %s", pair.LastSync.Format(logging.TimestampFormat)),
		fmt.Sprintf("Errors: %d", pair.Errors),
		fmt.Sprintf("Last Result: %s", pair.LastResult),
		fmt.Sprintf("Status: %s", state),
	}
}

func (m *Manager) sync(source string) []string {
	result, target := m.registry.BeginManualSync(source)
	switch result {
	case registry.NotMonitored:
		return []string{fmt.Sprintf("Directory not monitored: %s", source)}
	case registry.AlreadySyncing:
		return []string{fmt.Sprintf("Sync already in progress: %s", source)}
	}

	task := queue.FullSync(source, target)
	task.Manual = true
	if m.enqueue(task) == queue.Dropped {
		m.registry.EndManualSync(source)
		return []string{fmt.Sprintf("[ERROR] Queue full, sync not started: %s", source)}
	}

	m.log.WithFields(logrus.Fields{
		"source": source,
		"target": target,
	}).Info("[SYNC] Manual sync started")
	return []string{fmt.Sprintf("Syncing directory: %s -> %s", source, target)}
}
