package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkik/fss/pkg/protocol"
)

func TestFIFO(t *testing.T) {
	ring := New(4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Queued, ring.Enqueue(FullSync(fmt.Sprintf("/src%d", i), "/dst")))
	}

	for i := 0; i < 3; i++ {
		task, ok := ring.Dequeue()
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("/src%d", i), task.Source)
	}

	_, ok := ring.Dequeue()
	assert.False(t, ok)
}

func TestCapacityMinusOne(t *testing.T) {
	ring := New(DefaultCapacity)
	assert.Equal(t, DefaultCapacity, ring.Cap())

	var queued, dropped int
	for i := 0; i < DefaultCapacity+10; i++ {
		switch ring.Enqueue(FullSync(fmt.Sprintf("/src%d", i), "/dst")) {
		case Queued:
			queued++
		case Dropped:
			dropped++
		}
		assert.True(t, ring.Len() <= DefaultCapacity-1)
	}
	assert.Equal(t, DefaultCapacity-1, queued)
	assert.Equal(t, 11, dropped)

	// The dropped tasks never made it in, so the head is still the first
	// task.
	task, ok := ring.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "/src0", task.Source)

	// Freeing a slot makes room for exactly one more task.
	assert.Equal(t, Queued, ring.Enqueue(FullSync("/late", "/dst")))
	assert.Equal(t, Dropped, ring.Enqueue(FullSync("/later", "/dst")))
}

func TestWrapAround(t *testing.T) {
	ring := New(3)
	for round := 0; round < 5; round++ {
		assert.Equal(t, Queued, ring.Enqueue(FullSync("/a", "/b")))
		assert.Equal(t, Queued, ring.Enqueue(FullSync("/c", "/d")))
		assert.Equal(t, Dropped, ring.Enqueue(FullSync("/e", "/f")))
		assert.Equal(t, 2, ring.Len())

		first, _ := ring.Dequeue()
		second, _ := ring.Dequeue()
		assert.Equal(t, "/a", first.Source)
		assert.Equal(t, "/c", second.Source)
		assert.Equal(t, 0, ring.Len())
	}
}

func TestTaskArgs(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b", "ALL", "FULL"}, FullSync("/a", "/b").Args())

	task := Task{Source: "/a", Target: "/b", File: "f.txt", Operation: protocol.Deleted}
	assert.Equal(t, []string{"/a", "/b", "f.txt", "DELETED"}, task.Args())
}
