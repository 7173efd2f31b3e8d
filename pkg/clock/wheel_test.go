package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerFiresAtExpiry(t *testing.T) {
	w := NewWheel()
	fired := false
	timer := w.NewTimer("t1", true, func(nowUs int64) {
		fired = true
		assert.Equal(t, int64(1000), nowUs)
	})
	timer.ArmAt(1000)

	w.Tick(999)
	assert.False(t, fired)
	assert.True(t, timer.IsPending())

	w.Tick(1000)
	assert.True(t, fired)
	assert.False(t, timer.IsPending())
}

// TestEqualExpiryOrdering is P3: of two timers sharing an expiry, the one
// armed earlier fires first, regardless of how they are registered.
func TestEqualExpiryOrdering(t *testing.T) {
	w := NewWheel()
	var order []string

	second := w.NewTimer("second", true, func(int64) { order = append(order, "second") })
	first := w.NewTimer("first", true, func(int64) { order = append(order, "first") })

	first.ArmAt(5000)
	second.ArmAt(5000)

	w.Tick(5000)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestReArmChangesOrder(t *testing.T) {
	w := NewWheel()
	var order []string

	a := w.NewTimer("a", true, func(int64) { order = append(order, "a") })
	b := w.NewTimer("b", true, func(int64) { order = append(order, "b") })

	a.ArmAt(100)
	b.ArmAt(100)
	// Re-arming a to the same expiry moves it behind b.
	a.ArmAt(100)

	w.Tick(100)

	assert.Equal(t, []string{"b", "a"}, order)
}

func TestCancelIdempotent(t *testing.T) {
	w := NewWheel()
	calls := 0
	timer := w.NewTimer("t", true, func(int64) { calls++ })
	timer.Cancel()
	timer.Cancel()
	assert.False(t, timer.IsPending())

	timer.ArmAt(10)
	timer.Cancel()
	w.Tick(10)
	assert.Equal(t, 0, calls)
}

func TestCancelFromOwnCallbackIsNoop(t *testing.T) {
	w := NewWheel()
	var selfRef *Timer
	calls := 0
	selfRef = w.NewTimer("self", true, func(int64) {
		calls++
		selfRef.Cancel() // no-op: already fired
	})
	selfRef.ArmAt(50)
	w.Tick(50)
	assert.Equal(t, 1, calls)
	assert.False(t, selfRef.IsPending())
}

func TestShiftAllPositiveDeltaPullsEarlierFlooredAtZero(t *testing.T) {
	w := NewWheel()
	a := w.NewTimer("a", true, func(int64) {})
	b := w.NewTimer("b", true, func(int64) {})
	a.ArmAt(1000)
	b.ArmAt(500)

	w.ShiftAll(700)

	assert.Equal(t, int64(300), a.ExpiryUs())
	assert.Equal(t, int64(0), b.ExpiryUs())
}

func TestShiftAllNegativeDeltaPushesLater(t *testing.T) {
	w := NewWheel()
	a := w.NewTimer("a", true, func(int64) {})
	a.ArmAt(1000)

	w.ShiftAll(-200)

	assert.Equal(t, int64(1200), a.ExpiryUs())
}

func TestShiftAllOnlyAffectsPendingTimers(t *testing.T) {
	w := NewWheel()
	a := w.NewTimer("a", true, func(int64) {})
	a.ArmAt(1000)
	a.Cancel()

	w.ShiftAll(100)

	assert.Equal(t, int64(1000), a.ExpiryUs())
	assert.False(t, a.IsPending())
}

func TestCancelAll(t *testing.T) {
	w := NewWheel()
	a := w.NewTimer("a", true, func(int64) {})
	b := w.NewTimer("b", true, func(int64) {})
	a.ArmAt(10)
	b.ArmAt(20)

	w.CancelAll()

	assert.False(t, a.IsPending())
	assert.False(t, b.IsPending())
}
