package manager

import (
	"io"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/sidkik/fss/cmd/util"
	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/logging"
	"github.com/sidkik/fss/pkg/protocol"
	"github.com/sidkik/fss/pkg/queue"
)

// Variables mocked for unit testing.
var (
	newWorkerCommand = newWorkerCommandImpl
	startCommand     = (*exec.Cmd).Start
	waitCommand      = (*exec.Cmd).Wait
)

// WorkerSubcommand is the subcommand of WorkerPath that runs a task.
const WorkerSubcommand = "worker"

// completion is sent to the event loop when a worker exits.
type completion struct {
	task   queue.Task
	pid    int
	report protocol.Report
}

func newWorkerCommandImpl(path string, args ...string) *exec.Cmd {
	return exec.Command(path, append([]string{WorkerSubcommand}, args...)...)
}

// dispatch starts workers until either every slot is taken or there's no
// pending work. Deferred filesystem-event tasks go first.
func (m *Manager) dispatch() {
	for m.active < m.workers {
		task, ok := m.deferred.Dequeue()
		if !ok {
			task, ok = m.queue.Dequeue()
		}
		if !ok {
			return
		}
		m.run(task)
	}
}

// run starts a worker for the task. Tasks for pairs that were cancelled
// after the task was created are skipped. If the worker can't be started,
// the task is recorded as failed and the slot stays free.
func (m *Manager) run(task queue.Task) {
	pair, ok := m.registry.Find(task.Source)
	if !ok || !pair.Active {
		m.log.WithField("task", task).Info("[SPAWN] Skipped task for inactive pair")
		if task.Manual {
			m.registry.EndManualSync(task.Source)
		}
		return
	}

	if err := m.startWorker(task); err != nil {
		m.log.WithError(err).WithField("task", task).Error("[SPAWN] Failed to start worker")
		m.applyReport(task, 0, protocol.FailedReport(err.Error()))
	}
}

func (m *Manager) startWorker(task queue.Task) error {
	cmd := newWorkerCommand(m.workerPath, task.Args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.WithContext(err, "pipe stdout")
	}

	if err := startCommand(cmd); err != nil {
		return errors.WithContext(err, "start")
	}

	m.active++
	pid := cmd.Process.Pid
	m.log.WithFields(logrus.Fields{
		"task":   task,
		"pid":    pid,
		"active": m.active,
	}).Info("[SPAWN] Worker started")

	go func() {
		defer util.HandlePanic()

		// The pipe must be drained before waiting, since Wait closes it.
		output, readErr := io.ReadAll(stdout)
		if readErr != nil {
			m.log.WithError(readErr).WithField("pid", pid).Warn("Failed to read worker output")
		}

		if err := waitCommand(cmd); err != nil {
			m.log.WithError(err).WithField("pid", pid).Debug("Worker exited with error")
		}

		m.completions <- completion{
			task:   task,
			pid:    pid,
			report: protocol.ParseReport(output),
		}
	}()
	return nil
}

func (m *Manager) handleCompletion(c completion) {
	m.active--
	m.applyReport(c.task, c.pid, c.report)
}

// drainCompletions handles any other completions that are already pending,
// so that a batch of workers exiting together results in one dispatch pass.
func (m *Manager) drainCompletions() {
	for {
		select {
		case c := <-m.completions:
			m.handleCompletion(c)
		default:
			return
		}
	}
}

func (m *Manager) applyReport(task queue.Task, pid int, report protocol.Report) {
	if !m.registry.ApplyReport(task.Source, report.Status, task.Manual) {
		m.log.WithField("source", task.Source).Warn("Report for unknown pair")
	}

	logging.WorkerReport(m.log, task.Source, task.Target, pid,
		string(task.Operation), string(report.Status), report.Details)
}
