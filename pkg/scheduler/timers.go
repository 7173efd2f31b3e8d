package scheduler

// timerSlot indexes the scheduler's fixed array of named window timers,
// per the redesign note in spec section 9: rather than ten distinct
// struct fields, an enum-indexed array.
type timerSlot int

const (
	timerWarmup timerSlot = iota
	timerLockoutStart
	timerPeriod0
	timerPeriod1
	timerPeriod2
	timerPeriod3
	timerPeriod4
	timerPeriod5
	timerGpsEnable
	timerLockoutEnd
	numWindowTimers
)

func (s timerSlot) String() string {
	switch s {
	case timerWarmup:
		return "TX_WARMUP"
	case timerLockoutStart:
		return "SCHEDULE_LOCK_OUT_START"
	case timerPeriod0:
		return "PERIOD0"
	case timerPeriod1:
		return "PERIOD1"
	case timerPeriod2:
		return "PERIOD2"
	case timerPeriod3:
		return "PERIOD3"
	case timerPeriod4:
		return "PERIOD4"
	case timerPeriod5:
		return "PERIOD5"
	case timerGpsEnable:
		return "TX_DISABLE_GPS_ENABLE"
	case timerLockoutEnd:
		return "SCHEDULE_LOCK_OUT_END"
	default:
		return "UNKNOWN"
	}
}

// periodSlotNumber maps a period timer to its 1-based transmission slot
// number; timerPeriod0 is the pre-window prefetch-only period and has no
// slot number of its own.
func periodSlotNumber(t timerSlot) int {
	switch t {
	case timerPeriod1:
		return 1
	case timerPeriod2:
		return 2
	case timerPeriod3:
		return 3
	case timerPeriod4:
		return 4
	case timerPeriod5:
		return 5
	default:
		return 0
	}
}
