package clock

// Callback is invoked when a Timer fires. now is the monotonic
// microsecond instant the wheel observed at or after expiry.
type Callback func(nowUs int64)

// Timer is a named one-shot timer with an absolute microsecond expiry.
// Two timers armed with the same expiry fire in the order they were
// (re)armed: first-armed-first-fired (see Wheel.Tick).
type Timer struct {
	name              string
	wheel             *Wheel
	expiryUs          int64
	pending           bool
	visibleInTimeline bool
	callback          Callback
	armSeq            uint64
}

// Name returns the timer's identifier, stable for its lifetime.
func (t *Timer) Name() string { return t.name }

// IsPending reports whether the timer currently has an unfired expiry.
func (t *Timer) IsPending() bool { return t.pending }

// ExpiryUs returns the timer's absolute expiry. It is undefined (returns
// the last-seen value) if the timer is not pending.
func (t *Timer) ExpiryUs() int64 { return t.expiryUs }

// VisibleInTimeline reports whether this timer's firings should be
// surfaced in exported timelines, as opposed to being purely internal.
func (t *Timer) VisibleInTimeline() bool { return t.visibleInTimeline }

// ArmAt (re)schedules the timer's absolute expiry, replacing any pending
// expiry. Arming later than another timer at an identical expiry makes
// this timer fire after that one.
func (t *Timer) ArmAt(expiryUs int64) {
	t.wheel.arm(t, expiryUs)
}

// Cancel clears the timer's pending state. It is idempotent and safe to
// call from within the timer's own callback (a no-op in that case).
func (t *Timer) Cancel() {
	t.wheel.cancel(t)
}
