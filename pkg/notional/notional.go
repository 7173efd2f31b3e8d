// Package notional maintains UTC as a signed microsecond offset from the
// scheduler's monotonic clock, resynchronized on every GPS time lock.
//
// The event loop itself runs on monotonic time; UTC is derived only when
// needed, for logging and for window arithmetic. This keeps time-shift
// math local to the clock package.
package notional

import (
	"fmt"
	"time"
)

// Time converts between monotonic microseconds and UTC.
type Time struct {
	offsetUs int64 // utcUs(tUs) = tUs + offsetUs
}

// New creates a Time with a zero offset.
func New() *Time {
	return &Time{}
}

// SetFromGPS resynchronizes the offset from a GPS-derived UTC reading
// captured at systemAtCaptureUs. It returns the signed microsecond delta
// between the previous and new offsets, previous minus new (positive if
// the prior clock was running fast).
func (t *Time) SetFromGPS(utcUs, systemAtCaptureUs int64) int64 {
	newOffset := utcUs - systemAtCaptureUs
	delta := t.offsetUs - newOffset
	t.offsetUs = newOffset
	return delta
}

// OffsetUs returns the current offset.
func (t *Time) OffsetUs() int64 {
	return t.offsetUs
}

// UtcAt returns the UTC microsecond instant corresponding to a monotonic
// system timestamp.
func (t *Time) UtcAt(systemUs int64) int64 {
	return systemUs + t.offsetUs
}

// DateTimeAt renders the UTC instant at systemUs in
// "YYYY-MM-DD HH:MM:SS.uuuuuu" form.
func (t *Time) DateTimeAt(systemUs int64) string {
	utcUs := t.UtcAt(systemUs)
	sec := utcUs / 1_000_000
	us := utcUs % 1_000_000
	if us < 0 {
		us += 1_000_000
		sec--
	}
	tm := time.Unix(sec, 0).UTC()
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d",
		tm.Year(), int(tm.Month()), tm.Day(), tm.Hour(), tm.Minute(), tm.Second(), us)
}

// Parsed is the result of parsing a canonical notional-time string.
type Parsed struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Us                   int
}

// Parse decodes a "YYYY-MM-DD HH:MM:SS.uuuuuu" string.
func Parse(s string) (Parsed, error) {
	var p Parsed
	_, err := fmt.Sscanf(s, "%04d-%02d-%02d %02d:%02d:%02d.%06d",
		&p.Year, &p.Month, &p.Day, &p.Hour, &p.Minute, &p.Second, &p.Us)
	if err != nil {
		return Parsed{}, fmt.Errorf("notional: parse %q: %w", s, err)
	}
	return p, nil
}
