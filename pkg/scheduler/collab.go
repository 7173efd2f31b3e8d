package scheduler

import (
	"context"
	"time"
)

// GPS is the GPS capability: enable/disable acquisition. Inputs from the
// GPS driver arrive separately via Scheduler.OnGpsTimeLock and
// Scheduler.OnGps3DPlusLock.
type GPS interface {
	RequestNewGPSLock()
	CancelRequestNewGPSLock()
}

// Radio is the radio capability.
type Radio interface {
	IsActive() bool
	StartWarmup()
	Stop()
	SendRegularType1(ctx context.Context, quitAfterMs int) error
	SendBasicTelemetry(ctx context.Context, quitAfterMs int) error
	SendUserDefined(ctx context.Context, quitAfterMs int) error
}

// ClockSpeed is the CPU clock-speed capability used around script runs.
type ClockSpeed interface {
	GoHighSpeed()
	GoLowSpeed()
}

// RunResult is the outcome of running one slot's script.
type RunResult struct {
	Ok          bool
	ParseMs     int
	RunMs       int
	RunMemUsed  int
	RunMemAvail int
	Output      string
	MsgStateStr string
}

// ScriptRunner is the script-runner capability.
type ScriptRunner interface {
	ScriptAPIUsage(slot int) (usesGps, usesMsg bool)
	SlotHasMsgDef(slot int) bool
	RunSlot(ctx context.Context, slot int, fix *Fix3DPlusView) (RunResult, error)
	ScriptTimeLimit() time.Duration
}

// Watchdog is the fatal-path collaborator: feeding keeps the hardware
// watchdog happy during long blocking operations, PanicReboot handles an
// unrecoverable case. The scheduler calls PanicReboot only on coast
// overrun; it has no GPS-timeout or boot-config path and never calls Feed.
type Watchdog interface {
	Feed()
	PanicReboot(reason string)
}

// Fix3DPlusView is the subset of a 3D-plus fix exposed to scripts; kept
// distinct from gpsfix.Fix3DPlus so the script-runner boundary doesn't
// leak the scheduler's internal fix representation.
type Fix3DPlusView struct {
	LatDegMillionths int64
	LngDegMillionths int64
	AltitudeM        float64
	MaidenheadGrid   string
	SpeedKnots       float64
	CourseDegrees    float64
}

// Telemetry is a once-per-window snapshot (altitude, temperature,
// battery voltage, speed), stored via Scheduler.SetTelemetry.
// SendBasicTelemetry takes no telemetry argument, so the snapshot does not
// reach the radio capability.
type Telemetry struct {
	AltitudeM      float64
	TemperatureC   float64
	BatteryVoltsMv int
	SpeedKnots     float64
}
