package reactive_test

import (
	"testing"

	"github.com/delaneyj/classic/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalReadWrite(t *testing.T) {
	tr := reactive.NewTracker()
	count := reactive.Signal(tr, 1)

	assert.Equal(t, 1, count.Value())
	count.SetValue(2)
	assert.Equal(t, 2, count.Value())
}

// writing the same value never re-runs subscribers
func TestSignalEqualitySkip(t *testing.T) {
	tr := reactive.NewTracker()
	name := reactive.Signal(tr, "a")

	runs := 0
	reactive.Track(tr, func() {
		name.Value()
		runs++
	})
	require.Equal(t, 1, runs)

	name.SetValue("a")
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, name.Subscribers())

	name.SetValue("b")
	assert.Equal(t, 2, runs)
}

func TestSignalPointerIdentity(t *testing.T) {
	type box struct{ n int }
	tr := reactive.NewTracker()
	first := &box{n: 1}
	cell := reactive.Signal(tr, first)

	runs := 0
	reactive.Track(tr, func() {
		cell.Value()
		runs++
	})

	cell.SetValue(first)
	assert.Equal(t, 1, runs)

	// equal contents, different identity
	cell.SetValue(&box{n: 1})
	assert.Equal(t, 2, runs)
}

func TestLazyInitializesOnce(t *testing.T) {
	tr := reactive.NewTracker()
	calls := 0
	cell := reactive.Lazy(tr, func() int {
		calls++
		return 42
	})
	assert.Equal(t, 0, calls)

	assert.Equal(t, 42, cell.Peek())
	assert.Equal(t, 42, cell.Value())
	cell.SetValue(7)
	assert.Equal(t, 7, cell.Value())
	assert.Equal(t, 1, calls)
}

func TestLazyInitializesBeforeFirstWrite(t *testing.T) {
	tr := reactive.NewTracker()
	calls := 0
	cell := reactive.Lazy(tr, func() int {
		calls++
		return 3
	})

	cell.SetValue(3)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, cell.Value())
}

// a subscriber that switches cells between runs only stays on the cells it last read
func TestSubscriberResubscribes(t *testing.T) {
	tr := reactive.NewTracker()
	useA := reactive.Signal(tr, true)
	a := reactive.Signal(tr, "a1")
	b := reactive.Signal(tr, "b1")

	var seen []string
	reactive.Track(tr, func() {
		if useA.Value() {
			seen = append(seen, a.Value())
		} else {
			seen = append(seen, b.Value())
		}
	})
	assert.Equal(t, []string{"a1"}, seen)
	assert.Equal(t, 1, a.Subscribers())
	assert.Equal(t, 0, b.Subscribers())

	useA.SetValue(false)
	assert.Equal(t, []string{"a1", "b1"}, seen)
	assert.Equal(t, 1, b.Subscribers())

	// a still holds the stale subscription until its next write, which drops it
	a.SetValue("a2")
	assert.Equal(t, []string{"a1", "b1", "b1"}, seen)
	assert.Equal(t, 0, a.Subscribers())

	a.SetValue("a3")
	assert.Equal(t, []string{"a1", "b1", "b1"}, seen)

	b.SetValue("b2")
	assert.Equal(t, []string{"a1", "b1", "b1", "b2"}, seen)
}

func TestReadRegistersOncePerEvaluation(t *testing.T) {
	tr := reactive.NewTracker()
	cell := reactive.Signal(tr, 0)

	runs := 0
	reactive.Track(tr, func() {
		cell.Value()
		cell.Value()
		cell.Value()
		runs++
	})
	assert.Equal(t, 1, cell.Subscribers())

	cell.SetValue(1)
	assert.Equal(t, 2, runs)
}

func TestPeekDoesNotSubscribe(t *testing.T) {
	tr := reactive.NewTracker()
	cell := reactive.Signal(tr, 0)

	reactive.Track(tr, func() {
		cell.Peek()
	})
	assert.Equal(t, 0, cell.Subscribers())
}
