package clock

import "sort"

// Wheel is a single-threaded, cooperative timer facility. An event loop
// drives it by calling Tick with the current monotonic time; Tick fires
// every pending timer whose expiry has been reached, in stable
// (expiry, arm-order) sequence.
type Wheel struct {
	timers  []*Timer
	nextSeq uint64
	firing  *Timer // the timer whose callback is currently running, if any
}

// NewWheel creates an empty timer wheel.
func NewWheel() *Wheel {
	return &Wheel{}
}

// NewTimer registers a new named timer, initially not pending. The
// callback runs from inside Tick. visibleInTimeline marks whether the
// timer's firings should be surfaced in exported timelines.
func (w *Wheel) NewTimer(name string, visibleInTimeline bool, cb Callback) *Timer {
	t := &Timer{name: name, wheel: w, visibleInTimeline: visibleInTimeline, callback: cb}
	w.timers = append(w.timers, t)
	return t
}

func (w *Wheel) arm(t *Timer, expiryUs int64) {
	w.nextSeq++
	t.expiryUs = expiryUs
	t.pending = true
	t.armSeq = w.nextSeq
}

func (w *Wheel) cancel(t *Timer) {
	if t == w.firing {
		// Cancelling from within a timer's own callback is a no-op: the
		// wheel already cleared pending state before invoking it.
		return
	}
	t.pending = false
}

// Tick fires every pending timer whose expiry is <= nowUs, earliest
// expiry first, ties broken by arm order (the timer armed earlier fires
// first). Timers armed or cancelled by a firing callback are honored
// correctly: a timer cannot be fired twice for the same expiry, and a
// timer re-armed by an earlier callback to an already-passed expiry in
// the same tick will also fire within this Tick call.
func (w *Wheel) Tick(nowUs int64) {
	for {
		due := w.dueTimers(nowUs)
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			if !t.pending || t.expiryUs > nowUs {
				// Cancelled or re-armed later by an earlier callback.
				continue
			}
			t.pending = false
			w.firing = t
			t.callback(nowUs)
			w.firing = nil
		}
	}
}

func (w *Wheel) dueTimers(nowUs int64) []*Timer {
	var due []*Timer
	for _, t := range w.timers {
		if t.pending && t.expiryUs <= nowUs {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].expiryUs != due[j].expiryUs {
			return due[i].expiryUs < due[j].expiryUs
		}
		return due[i].armSeq < due[j].armSeq
	})
	return due
}

// CancelAll cancels every timer owned by the wheel. Used by Stop().
func (w *Wheel) CancelAll() {
	for _, t := range w.timers {
		t.pending = false
	}
}

// ShiftAll reprojects every pending timer's expiry by deltaUs: a
// positive delta (the corrected clock runs ahead) pulls expiries
// earlier, floored at zero; a negative delta pushes them later. Relative
// ordering among timers sharing an expiry is preserved.
func (w *Wheel) ShiftAll(deltaUs int64) {
	pending := make([]*Timer, 0, len(w.timers))
	for _, t := range w.timers {
		if t.pending {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].expiryUs != pending[j].expiryUs {
			return pending[i].expiryUs < pending[j].expiryUs
		}
		return pending[i].armSeq < pending[j].armSeq
	})
	for _, t := range pending {
		if deltaUs >= 0 {
			shifted := t.expiryUs - deltaUs
			if shifted < 0 {
				shifted = 0
			}
			t.expiryUs = shifted
		} else {
			t.expiryUs = t.expiryUs - deltaUs
		}
	}
}
