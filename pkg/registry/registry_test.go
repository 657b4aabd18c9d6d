package registry

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/sidkik/fss/pkg/protocol"
)

func TestAddDuplicate(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := New(clock)

	assert.Equal(t, Created, reg.Add("./a", "./b"))
	created, ok := reg.Find("./a")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	assert.Equal(t, Duplicate, reg.Add("./a", "./c"))

	// The duplicate add must not change the target or the timestamp.
	after, ok := reg.Find("./a")
	assert.True(t, ok)
	assert.Equal(t, created, after)
	assert.Equal(t, "./b", after.Target)

	assert.Equal(t, Pair{
		Source:     "./a",
		Target:     "./b",
		Active:     true,
		LastResult: ResultPending,
		LastSync:   created.LastSync,
	}, after)
}

func TestExactPathMatching(t *testing.T) {
	reg := New(clockwork.NewFakeClock())
	reg.Add("./a", "./b")

	_, ok := reg.Find("a")
	assert.False(t, ok)
	assert.Equal(t, Created, reg.Add("a", "./b"))
}

func TestCancel(t *testing.T) {
	reg := New(clockwork.NewFakeClock())
	assert.False(t, reg.Cancel("/missing"))

	reg.Add("/a", "/b")
	assert.True(t, reg.Cancel("/a"))
	assert.False(t, reg.Cancel("/a"), "already inactive")

	pair, ok := reg.Find("/a")
	assert.True(t, ok, "cancelled pairs aren't deleted")
	assert.False(t, pair.Active)
}

func TestManualSync(t *testing.T) {
	reg := New(clockwork.NewFakeClock())

	res, _ := reg.BeginManualSync("/a")
	assert.Equal(t, NotMonitored, res)

	reg.Add("/a", "/b")
	res, target := reg.BeginManualSync("/a")
	assert.Equal(t, Started, res)
	assert.Equal(t, "/b", target)

	res, _ = reg.BeginManualSync("/a")
	assert.Equal(t, AlreadySyncing, res)

	// Only the manual sync's report clears the flag.
	reg.ApplyReport("/a", protocol.StatusSuccess, false)
	res, _ = reg.BeginManualSync("/a")
	assert.Equal(t, AlreadySyncing, res)

	reg.ApplyReport("/a", protocol.StatusSuccess, true)
	res, _ = reg.BeginManualSync("/a")
	assert.Equal(t, Started, res)

	reg.EndManualSync("/a")
	reg.Cancel("/a")
	res, _ = reg.BeginManualSync("/a")
	assert.Equal(t, NotMonitored, res)
}

func TestApplyReport(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := New(clock)
	assert.False(t, reg.ApplyReport("/a", protocol.StatusSuccess, false))

	reg.Add("/a", "/b")

	tests := []struct {
		status    protocol.Status
		expErrors int
		expResult Result
	}{
		{protocol.StatusSuccess, 0, ResultSuccess},
		{protocol.StatusPartial, 1, ResultPartial},
		{protocol.StatusError, 2, ResultError},
		{protocol.StatusFail, 3, ResultError},
		{protocol.StatusUnknown, 4, ResultError},
		{protocol.StatusSuccess, 4, ResultSuccess},
	}

	for _, test := range tests {
		clock.Advance(time.Second)
		assert.True(t, reg.ApplyReport("/a", test.status, false))

		pair, _ := reg.Find("/a")
		assert.Equal(t, test.expErrors, pair.Errors, test.status)
		assert.Equal(t, test.expResult, pair.LastResult, test.status)
		assert.Equal(t, clock.Now(), pair.LastSync, test.status)
	}
}

func TestPairsOrder(t *testing.T) {
	reg := New(clockwork.NewFakeClock())
	reg.Add("/z", "/1")
	reg.Add("/a", "/2")
	reg.Add("/m", "/3")

	var sources []string
	for _, pair := range reg.Pairs() {
		sources = append(sources, pair.Source)
	}
	assert.Equal(t, []string{"/z", "/a", "/m"}, sources)
}
