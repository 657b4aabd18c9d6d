// Package queue implements the fixed-capacity FIFO of pending sync tasks.
package queue

import (
	"fmt"

	"github.com/sidkik/fss/pkg/protocol"
)

// DefaultCapacity is the number of slots in a queue. One slot is always kept
// empty, so at most DefaultCapacity-1 tasks can be pending.
const DefaultCapacity = 100

// Task is a request to run a worker for a pair.
type Task struct {
	Source string
	Target string

	// File is the name of the file to sync, or protocol.AllFiles.
	File      string
	Operation protocol.Operation

	// Manual is set for tasks created by the `sync` command. The pair's
	// syncing flag is cleared once the task's report is applied.
	Manual bool
}

// FullSync returns a task that syncs every file in source to target.
func FullSync(source, target string) Task {
	return Task{
		Source:    source,
		Target:    target,
		File:      protocol.AllFiles,
		Operation: protocol.Full,
	}
}

// Args returns the positional arguments for the worker that runs the task.
func (t Task) Args() []string {
	return protocol.WorkerArgs(t.Source, t.Target, t.File, t.Operation)
}

func (t Task) String() string {
	return fmt.Sprintf("%s -> %s (%s %s)", t.Source, t.Target, t.Operation, t.File)
}

// EnqueueResult is returned by Ring.Enqueue.
type EnqueueResult int

const (
	// Queued means the task was added.
	Queued EnqueueResult = iota

	// Dropped means the ring was full and the task was discarded.
	Dropped
)

// Ring is a circular buffer of tasks. The ring is full when advancing the
// tail would make it equal to the head, so it never holds more than
// capacity-1 tasks.
type Ring struct {
	slots []Task
	head  int
	tail  int
}

// New returns an empty Ring with the given number of slots. Capacities below
// two are raised to two so that the ring can hold at least one task.
func New(capacity int) *Ring {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring{slots: make([]Task, capacity)}
}

// Enqueue appends the task unless the ring is full.
func (r *Ring) Enqueue(task Task) EnqueueResult {
	next := (r.tail + 1) % len(r.slots)
	if next == r.head {
		return Dropped
	}

	r.slots[r.tail] = task
	r.tail = next
	return Queued
}

// Dequeue removes the oldest task.
func (r *Ring) Dequeue() (Task, bool) {
	if r.head == r.tail {
		return Task{}, false
	}

	task := r.slots[r.head]
	r.slots[r.head] = Task{}
	r.head = (r.head + 1) % len(r.slots)
	return task, true
}

// Len returns the number of pending tasks.
func (r *Ring) Len() int {
	return (r.tail - r.head + len(r.slots)) % len(r.slots)
}

// Cap returns the number of slots in the ring.
func (r *Ring) Cap() int {
	return len(r.slots)
}
