package manager

import (
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/fss/pkg/config"
	"github.com/sidkik/fss/pkg/fswatch"
	"github.com/sidkik/fss/pkg/protocol"
	"github.com/sidkik/fss/pkg/queue"
	"github.com/sidkik/fss/pkg/registry"
)

func TestNewWorkerCommand(t *testing.T) {
	cmd := newWorkerCommandImpl("/usr/bin/fss", queue.FullSync("/a", "/b").Args()...)
	assert.Equal(t, []string{"/usr/bin/fss", "worker", "/a", "/b", "ALL", "FULL"}, cmd.Args)
}

func TestWorkerCap(t *testing.T) {
	p := mockProcesses(t)
	m := newTestManager(config.DefaultSettings())
	m.registry.Add("/a", "/b")

	for i := 0; i < 7; i++ {
		m.handleChange(fswatch.Change{
			Sources:   []string{"/a"},
			File:      fmt.Sprintf("f%d.txt", i),
			Operation: protocol.Added,
		})
		assert.True(t, m.active <= config.DefaultWorkers)
	}
	assert.Len(t, p.started, config.DefaultWorkers)
	assert.Equal(t, 2, m.deferred.Len())

	for i := 0; i < 7; i++ {
		p.exit(t, i, fmt.Sprintf(
			"STATUS: SUCCESS\nDETAILS: File: f%d.txt added\nEXEC_REPORT_END\n", i))
		m.handleCompletion(waitCompletion(t, m.Manager))
		m.drainCompletions()
		m.dispatch()
		assert.True(t, m.active <= config.DefaultWorkers)
	}

	assert.Len(t, p.started, 7)
	assert.Equal(t, 0, m.active)
	assert.Equal(t, 0, m.deferred.Len())

	pair, _ := m.registry.Find("/a")
	assert.Equal(t, 0, pair.Errors)
	assert.Equal(t, registry.ResultSuccess, pair.LastResult)

	var reports int
	for _, msg := range loggedMessages(m.hook) {
		if msg == fmt.Sprintf("[/a] [/b] [%d] [ADDED] [SUCCESS] [File: f%d.txt added]",
			1000+reports, reports) {
			reports++
		}
	}
	assert.Equal(t, 7, reports)
}

func TestDispatchQueue(t *testing.T) {
	p := mockProcesses(t)
	settings := config.DefaultSettings()
	settings.Workers = 2
	m := newTestManager(settings)

	for _, source := range []string{"/a", "/b", "/c"} {
		m.registry.Add(source, source+"-target")
		m.queue.Enqueue(queue.FullSync(source, source+"-target"))
	}

	m.dispatch()
	require.Len(t, p.started, 2)
	assert.Equal(t, []string{"fss", "worker", "/a", "/a-target", "ALL", "FULL"}, p.started[0].Args)
	assert.Equal(t, []string{"fss", "worker", "/b", "/b-target", "ALL", "FULL"}, p.started[1].Args)
	assert.Equal(t, 1, m.queue.Len())

	// Completions that arrive together are handled in one batch.
	p.exit(t, 0, "EXEC_REPORT_START\nSTATUS: PARTIAL\nDETAILS: 1 files copied, 1 failed\nEXEC_REPORT_END\n")
	p.exit(t, 1, "")
	m.handleCompletion(waitCompletion(t, m.Manager))
	m.handleCompletion(waitCompletion(t, m.Manager))
	m.dispatch()

	require.Len(t, p.started, 3)
	assert.Equal(t, 1, m.active)

	a, _ := m.registry.Find("/a")
	assert.Equal(t, 1, a.Errors)
	assert.Equal(t, registry.ResultPartial, a.LastResult)

	// A worker that printed nothing counts as failed.
	b, _ := m.registry.Find("/b")
	assert.Equal(t, 1, b.Errors)
	assert.Equal(t, registry.ResultError, b.LastResult)
	assert.True(t, hasMessageContaining(m.hook, "[FULL] [FAIL] [No output from worker]"))
}

func TestManualSyncCompletes(t *testing.T) {
	p := mockProcesses(t)
	m := newTestManager(config.DefaultSettings())
	m.registry.Add("/a", "/b")

	m.handleCommand("sync /a")
	m.dispatch()
	require.Len(t, p.started, 1)

	pair, _ := m.registry.Find("/a")
	assert.True(t, pair.Syncing)

	p.exit(t, 0, "EXEC_REPORT_START\nSTATUS: ERROR\nDETAILS: Cannot open source dir /a\nEXEC_REPORT_END\n")
	m.handleCompletion(waitCompletion(t, m.Manager))

	pair, _ = m.registry.Find("/a")
	assert.False(t, pair.Syncing)
	assert.Equal(t, 1, pair.Errors)
	assert.Equal(t, registry.ResultError, pair.LastResult)

	// Another manual sync can now be started.
	m.responses.Reset()
	m.handleCommand("sync /a")
	assert.Equal(t, framed("Syncing directory: /a -> /b"), m.responses.String())
}

func TestSkipInactivePair(t *testing.T) {
	p := mockProcesses(t)
	m := newTestManager(config.DefaultSettings())
	m.registry.Add("/a", "/b")

	m.handleCommand("sync /a")
	m.registry.Cancel("/a")
	m.dispatch()

	assert.Empty(t, p.started)
	assert.Equal(t, 0, m.active)

	pair, _ := m.registry.Find("/a")
	assert.False(t, pair.Syncing)
	assert.Equal(t, registry.ResultPending, pair.LastResult)
	assert.True(t, hasMessageContaining(m.hook, "[SPAWN] Skipped task for inactive pair"))
}

func TestStartFailure(t *testing.T) {
	p := mockProcesses(t)
	p.startErr = &exec.Error{Name: "fss", Err: exec.ErrNotFound}
	m := newTestManager(config.DefaultSettings())
	m.registry.Add("/a", "/b")

	m.handleCommand("sync /a")
	m.dispatch()

	// The slot isn't consumed, and the failure is recorded against the pair.
	assert.Equal(t, 0, m.active)
	assert.Equal(t, 0, m.queue.Len())

	pair, _ := m.registry.Find("/a")
	assert.Equal(t, 1, pair.Errors)
	assert.Equal(t, registry.ResultError, pair.LastResult)
	assert.False(t, pair.Syncing)
	assert.True(t, hasMessageContaining(m.hook, "[/a] [/b] [0] [FULL] [FAIL] [start: exec: \"fss\""))
}
