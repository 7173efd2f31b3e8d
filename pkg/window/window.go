// Package window computes the monotonic instant of the next WSPR
// transmission window start from a GPS-derived time reading.
package window

const (
	usPerSecond = 1_000_000
	usPerMinute = 60 * usPerSecond
	usPerCycle  = 10 * usPerMinute
)

// NextWindowUs returns the monotonic microsecond timestamp of the next
// window start, given the configured start minute (0, 2, 4, 6 or 8), a
// GPS-derived time reading (minute/second/microsecond of the UTC minute)
// and the current monotonic time.
//
// WSPR transmissions start at _<M>:01.000 where <M> is windowStartMin,
// repeating every 10 UTC minutes. At the exact coincidence where the GPS
// reading already sits on the window's target minute with zero seconds
// and microseconds, the result is nowUs + 1s (the ":01" fudge), never
// nowUs itself.
func NextWindowUs(windowStartMin, gpsMin, gpsSec, gpsUs int, nowUs int64) int64 {
	minDiff := windowStartMin - (gpsMin % 10)
	secDiff := 1 - gpsSec
	usDiff := -gpsUs

	totalUs := int64(minDiff)*usPerMinute + int64(secDiff)*usPerSecond + int64(usDiff)
	if totalUs < 0 {
		totalUs += usPerCycle
	}
	return nowUs + totalUs
}
