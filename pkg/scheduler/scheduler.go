// Package scheduler implements the Copilot Control Scheduler: the
// deterministic, event-driven state machine that decides when to run the
// GPS receiver, when to warm the radio, exactly when to key a
// transmission, which payload to encode, and when to reacquire time.
package scheduler

import (
	"context"
	"time"

	"github.com/copilotcontrol/scheduler/pkg/clock"
	"github.com/copilotcontrol/scheduler/pkg/gpsfix"
	"github.com/copilotcontrol/scheduler/pkg/marker"
	"github.com/copilotcontrol/scheduler/pkg/notional"
	"github.com/copilotcontrol/scheduler/pkg/planner"
	"github.com/copilotcontrol/scheduler/pkg/window"
)

const (
	usPerSecond      = 1_000_000
	twoMinutesUs     = 120 * usPerSecond
	thirtySecondsUs  = 30 * usPerSecond
	jsBudgetUs       = 3 * usPerSecond // ~2s script limit + 1s safety
	sevenSecondsUs   = 7 * usPerSecond // pre-coast margin, a tunable constant
	period5QuitAfter = 60_000          // ms
)

// Config is the scheduler's boot-time configuration.
type Config struct {
	// StartMinute is the configured window start minute: 0, 2, 4, 6 or 8.
	StartMinute int
}

type slotResult struct {
	ranOk bool
}

// Scheduler is the Copilot Control Scheduler state machine. All methods
// except construction run on a single logical thread: the scheduler
// accepts GPS events and drives its timer wheel, never spawning
// goroutines of its own.
type Scheduler struct {
	cfg Config

	clk    clock.Clock
	wheel  *clock.Wheel
	notion *notional.Time
	sink   marker.Sink

	gps        GPS
	radio      Radio
	clockSpeed ClockSpeed
	scripts    ScriptRunner
	watchdog   Watchdog

	running      bool
	reqGpsActive bool
	inLockout    bool

	active gpsfix.ScheduleData
	cache  gpsfix.ScheduleData

	coastCount int

	timers     [numWindowTimers]*clock.Timer
	coastTimer *clock.Timer

	pendingCoastWindowUs int64

	behaviors   map[int]planner.Behavior
	slotResults map[int]slotResult

	telemetry Telemetry
}

// New constructs a Scheduler and registers its (initially idle) timer set.
func New(cfg Config, clk clock.Clock, gps GPS, radio Radio, clockSpeed ClockSpeed, scripts ScriptRunner, watchdog Watchdog, sink marker.Sink) *Scheduler {
	s := &Scheduler{
		cfg:         cfg,
		clk:         clk,
		wheel:       clock.NewWheel(),
		notion:      notional.New(),
		sink:        sink,
		gps:         gps,
		radio:       radio,
		clockSpeed:  clockSpeed,
		scripts:     scripts,
		watchdog:    watchdog,
		behaviors:   map[int]planner.Behavior{},
		slotResults: map[int]slotResult{},
	}

	for slot := timerWarmup; slot < numWindowTimers; slot++ {
		slot := slot
		s.timers[slot] = s.wheel.NewTimer(slot.String(), true, func(nowUs int64) {
			s.onWindowTimer(slot, nowUs)
		})
	}
	s.coastTimer = s.wheel.NewTimer("COAST", false, func(nowUs int64) {
		s.onCoastFired(nowUs)
	})

	return s
}

// SetTelemetry stores the once-per-window telemetry snapshot. The stored
// value is not read by the scheduler: no window preparation or send call
// passes it to the radio capability.
func (s *Scheduler) SetTelemetry(t Telemetry) {
	s.telemetry = t
}

// Tick drives the timer wheel; callers run it from their event loop with
// the current monotonic time.
func (s *Scheduler) Tick(nowUs int64) {
	s.wheel.Tick(nowUs)
}

// Start is idempotent: if already running, it is a no-op. Otherwise it
// begins accepting GPS events and requests an initial GPS lock.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.emit("START")
	s.gps.RequestNewGPSLock()
	s.reqGpsActive = true
	s.emit("REQ_NEW_GPS_LOCK")
}

// Stop cancels every pending timer, clears schedule data and all
// lifecycle flags.
func (s *Scheduler) Stop() {
	s.wheel.CancelAll()
	s.active.Reset()
	s.cache.Reset()
	s.running = false
	s.reqGpsActive = false
	s.inLockout = false
	s.emit("STOP")
}

// OnGpsTimeLock delivers a time-only GPS lock.
func (s *Scheduler) OnGpsTimeLock(fix gpsfix.FixTime) {
	now := s.clk.NowUs()
	switch {
	case !s.reqGpsActive && !s.inLockout:
		s.emit("ON_GPS_LOCK_TIME_REQ_NO_LOCKOUT_NO")
	case !s.reqGpsActive && s.inLockout:
		s.emit("ON_GPS_LOCK_TIME_REQ_NO_LOCKOUT_ON")
	case s.reqGpsActive && s.inLockout:
		s.cache.TimeOnly = gpsfix.TimedFix[gpsfix.FixTime]{Fix: fix, TimeAtSet: now}
		s.emit("ON_GPS_LOCK_TIME_CACHED")
	default:
		s.emit("ON_GPS_LOCK_TIME_APPLIED")
		s.applyTimeLock(fix, now)
	}
}

// OnGps3DPlusLock delivers a 3D-plus GPS lock.
func (s *Scheduler) OnGps3DPlusLock(fix gpsfix.Fix3DPlus) {
	now := s.clk.NowUs()
	switch {
	case !s.reqGpsActive && !s.inLockout:
		s.emit("ON_GPS_LOCK_3D_PLUS_REQ_NO_LOCKOUT_NO")
	case !s.reqGpsActive && s.inLockout:
		s.emit("ON_GPS_LOCK_3D_PLUS_REQ_NO_LOCKOUT_ON")
	case s.reqGpsActive && s.inLockout:
		s.cache.ThreeD = gpsfix.TimedFix[gpsfix.Fix3DPlus]{Fix: fix, TimeAtSet: now}
		s.emit("ON_GPS_LOCK_3D_PLUS_CACHED")
	default:
		s.emit("ON_GPS_LOCK_3D_PLUS_APPLIED")
		s.apply3DLock(fix, now)
	}
}

func (s *Scheduler) applyTimeLock(fix gpsfix.FixTime, now int64) {
	s.active.TimeOnly = gpsfix.TimedFix[gpsfix.FixTime]{Fix: fix, TimeAtSet: now}
	s.syncNotional(fix.Fix, now)

	if s.active.ThreeD.Present() {
		// A 3D fix is already active: this time-only reading is absorbed
		// for drift measurement only. Per the "3D wins until lockout end"
		// rule, it does not re-prepare the schedule.
		return
	}

	windowStartUs := window.NextWindowUs(s.cfg.StartMinute, fix.Minute, fix.Second, fix.Millisecond*1000, now)
	s.emit("APPLY_TIME_AND_UPDATE_SCHEDULE")
	s.scheduleCoast(now, windowStartUs)
}

func (s *Scheduler) apply3DLock(fix gpsfix.Fix3DPlus, now int64) {
	s.active.ThreeD = gpsfix.TimedFix[gpsfix.Fix3DPlus]{Fix: fix, TimeAtSet: now}
	s.syncNotional(fix.Fix, now)

	if s.coastTimer.IsPending() {
		s.coastTimer.Cancel()
		s.emit("COAST_CANCELED")
	}
	s.gps.CancelRequestNewGPSLock()
	s.emit("CANCEL_REQ_NEW_GPS_LOCK")

	windowStartUs := window.NextWindowUs(s.cfg.StartMinute, fix.Minute, fix.Second, fix.Millisecond*1000, now)
	s.emit("UPDATE_SCHEDULE")
	s.prepareWindow(now, windowStartUs, true)
}

// syncNotional resynchronizes notional time from a fix carrying a full
// calendar date. Fixes with Year == 0 (no date available) cannot be
// converted to an absolute UTC instant and are skipped; they still
// participate in window arithmetic, which only needs minute/second/us.
func (s *Scheduler) syncNotional(f gpsfix.Fix, systemUs int64) {
	if !f.HasDate() {
		return
	}
	utcUs := time.Date(f.Year, time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, 0, time.UTC).UnixMicro()
	utcUs += int64(f.Millisecond) * 1000
	s.notion.SetFromGPS(utcUs, systemUs)
	s.emit("TIME_SYNC")
}

func (s *Scheduler) scheduleCoast(nowUs, windowStartUs int64) {
	coastAtUs := windowStartUs - sevenSecondsUs
	if coastAtUs < nowUs+1 {
		coastAtUs = nowUs + 1
	}
	s.pendingCoastWindowUs = windowStartUs
	s.coastTimer.ArmAt(coastAtUs)
	s.emit("COAST_SCHEDULED")
}

func (s *Scheduler) onCoastFired(nowUs int64) {
	s.gps.CancelRequestNewGPSLock()
	s.emit("CANCEL_REQ_NEW_GPS_LOCK")
	s.emit("COAST_TRIGGERED")
	s.prepareWindow(nowUs, s.pendingCoastWindowUs, false)
}

// prepareWindow is prepare_window_schedule: it recomputes slot behavior
// and arms the ten window timers for the window starting at
// windowStartUs. haveGpsLock selects whether this is a normal window or a
// coast window (time lock only, no position).
func (s *Scheduler) prepareWindow(nowUs, windowStartUs int64, haveGpsLock bool) {
	s.emit("PREPARE_WINDOW_SCHEDULE_START")

	if haveGpsLock {
		s.coastCount = 0
	} else {
		s.coastCount++
		if s.coastCount >= 3 {
			s.watchdog.PanicReboot("coast overrun: 3 consecutive windows without a 3D fix")
			s.emit("PREPARE_WINDOW_SCHEDULE_END")
			return
		}
	}

	s.emit("PREPARE_WINDOW_SLOT_BEHAVIOR_START")
	s.behaviors = planner.PlanAll(func(slot int) planner.Inputs {
		usesGps, usesMsg := s.scripts.ScriptAPIUsage(slot)
		return planner.Inputs{
			Slot:         slot,
			HaveGpsLock:  haveGpsLock,
			JsUsesGpsApi: usesGps,
			JsUsesMsgApi: usesMsg,
			HasMsgDef:    s.scripts.SlotHasMsgDef(slot),
		}
	})
	s.slotResults = map[int]slotResult{}
	s.emit("PREPARE_WINDOW_SLOT_BEHAVIOR_END")

	s.armWindowTimers(nowUs, windowStartUs)
	s.emit("PREPARE_WINDOW_SCHEDULE_END")
}

func (s *Scheduler) willTransmit(slot int) bool {
	return s.behaviors[slot].MsgSend != planner.MsgNone
}

func (s *Scheduler) armWindowTimers(nowUs, windowStartUs int64) {
	avail := windowStartUs - nowUs
	if avail < 0 {
		avail = 0
	}

	timeAtWarmup := windowStartUs - min64(thirtySecondsUs, avail)
	timeAtLockoutStart := windowStartUs - min64(jsBudgetUs, avail)
	timeAtPeriod0 := timeAtLockoutStart
	timeAtPeriod1 := windowStartUs
	timeAtPeriod2 := timeAtPeriod1 + twoMinutesUs
	timeAtPeriod3 := timeAtPeriod2 + twoMinutesUs
	timeAtPeriod4 := timeAtPeriod3 + twoMinutesUs
	timeAtPeriod5 := timeAtPeriod4 + twoMinutesUs
	timeAtLockoutEnd := timeAtPeriod5

	doWarmup := false
	periodTimes := map[int]int64{1: timeAtPeriod1, 2: timeAtPeriod2, 3: timeAtPeriod3, 4: timeAtPeriod4, 5: timeAtPeriod5}
	// If no slot in this window transmits at all, the radio is never
	// needed: reacquire GPS immediately at lockout start rather than
	// waiting through the whole window. Otherwise this is overwritten
	// below to the last slot that actually transmits.
	timeAtGpsEnable := timeAtLockoutStart
	for slotNum := 1; slotNum <= planner.NumSlots; slotNum++ {
		if s.willTransmit(slotNum) {
			doWarmup = true
			timeAtGpsEnable = periodTimes[slotNum]
		}
	}

	if doWarmup {
		s.timers[timerWarmup].ArmAt(timeAtWarmup)
	} else {
		s.timers[timerWarmup].Cancel()
	}
	s.timers[timerLockoutStart].ArmAt(timeAtLockoutStart)
	s.timers[timerPeriod0].ArmAt(timeAtPeriod0)
	s.timers[timerPeriod1].ArmAt(timeAtPeriod1)
	s.timers[timerPeriod2].ArmAt(timeAtPeriod2)
	s.timers[timerPeriod3].ArmAt(timeAtPeriod3)
	s.timers[timerPeriod4].ArmAt(timeAtPeriod4)
	s.timers[timerPeriod5].ArmAt(timeAtPeriod5)
	s.timers[timerGpsEnable].ArmAt(timeAtGpsEnable)
	s.timers[timerLockoutEnd].ArmAt(timeAtLockoutEnd)
}

func (s *Scheduler) onWindowTimer(slot timerSlot, nowUs int64) {
	switch slot {
	case timerWarmup:
		s.radio.StartWarmup()
		s.emit("TX_WARMUP")
	case timerLockoutStart:
		s.inLockout = true
		s.emit("SCHEDULE_LOCK_OUT_START")
	case timerPeriod0, timerPeriod1, timerPeriod2, timerPeriod3, timerPeriod4, timerPeriod5:
		thisSlot := periodSlotNumber(slot)
		nextSlot := 0
		if slot != timerPeriod5 {
			nextSlot = periodSlotNumber(slot + 1)
		}
		quitAfterMs := 0
		if slot == timerPeriod5 {
			quitAfterMs = period5QuitAfter
		}
		s.emit(slot.String() + "_START")
		s.doPeriod(thisSlot, nextSlot, quitAfterMs)
		s.emit(slot.String() + "_END")
	case timerGpsEnable:
		s.radio.Stop()
		s.emit("TX_DISABLE_GPS_ENABLE")
		s.gps.RequestNewGPSLock()
		s.reqGpsActive = true
		s.emit("REQ_NEW_GPS_LOCK")
	case timerLockoutEnd:
		s.inLockout = false
		s.emit("SCHEDULE_LOCK_OUT_END")
		s.mergeCache()
	}
}

// doPeriod is do_period: act on the current slot's message, then
// prefetch the next slot's script. thisSlot == 0 means no message action
// (PERIOD0); nextSlot == 0 means no prefetch (after PERIOD5).
func (s *Scheduler) doPeriod(thisSlot, nextSlot, quitAfterMs int) {
	ctx := context.Background()

	if thisSlot != 0 {
		s.sendSlotMessage(ctx, thisSlot, quitAfterMs)
	}

	if nextSlot != 0 {
		if s.behaviors[nextSlot].RunJs {
			s.runScript(ctx, nextSlot)
		} else {
			s.emit("JS_NO_EXEC")
		}
	}
}

func (s *Scheduler) sendSlotMessage(ctx context.Context, slot, quitAfterMs int) {
	b := s.behaviors[slot]
	switch b.MsgSend {
	case planner.MsgNone:
		s.emit("SEND_NO_MSG_NONE")
	case planner.MsgCustom:
		if s.slotResults[slot].ranOk {
			_ = s.radio.SendUserDefined(ctx, quitAfterMs)
			s.emit("SEND_CUSTOM_MESSAGE")
		} else {
			s.sendDefaultOrDiagnostic(ctx, b, quitAfterMs)
		}
	case planner.MsgDefault:
		s.sendDefaultOrDiagnostic(ctx, b, quitAfterMs)
	}
}

func (s *Scheduler) sendDefaultOrDiagnostic(ctx context.Context, b planner.Behavior, quitAfterMs int) {
	if !b.HasDefault {
		s.emit("SEND_NO_MSG_BAD_JS_NO_DEFAULT")
		return
	}
	if !b.CanSendDefault {
		s.emit("SEND_NO_MSG_BAD_JS_NO_ABLE_DEFAULT")
		return
	}
	switch b.Default {
	case planner.DefaultRegularType1:
		_ = s.radio.SendRegularType1(ctx, quitAfterMs)
		s.emit("SEND_REGULAR_TYPE1")
	case planner.DefaultBasicTelemetry:
		_ = s.radio.SendBasicTelemetry(ctx, quitAfterMs)
		s.emit("SEND_BASIC_TELEMETRY")
	}
}

// runScript runs a slot's script prefetch, observing the radio/clock-speed
// discipline: stop the radio if active, switch to high speed, run, switch
// back to low speed, and restart warmup if the radio had been active.
func (s *Scheduler) runScript(ctx context.Context, slot int) {
	radioWasActive := s.radio.IsActive()
	if radioWasActive {
		s.radio.Stop()
	}
	s.clockSpeed.GoHighSpeed()

	res, err := s.scripts.RunSlot(ctx, slot, s.currentFixView())

	s.clockSpeed.GoLowSpeed()
	if radioWasActive {
		s.radio.StartWarmup()
	}

	s.slotResults[slot] = slotResult{ranOk: err == nil && res.Ok}

	if res.MsgStateStr != "" {
		s.sink.EmitAnnotated("JS_EXEC", s.clk.NowUs(), res.MsgStateStr)
	} else {
		s.emit("JS_EXEC")
	}
}

func (s *Scheduler) currentFixView() *Fix3DPlusView {
	if !s.active.ThreeD.Present() {
		return nil
	}
	f := s.active.ThreeD.Fix
	return &Fix3DPlusView{
		LatDegMillionths: f.LatDegMillionths,
		LngDegMillionths: f.LngDegMillionths,
		AltitudeM:        f.AltitudeM,
		MaidenheadGrid:   f.MaidenheadGrid,
		SpeedKnots:       f.SpeedKnots,
		CourseDegrees:    f.CourseDegrees,
	}
}

// mergeCache implements the lockout-end cache merge: fresh cached 3D
// beats fresh cached time-only beats whichever active fix carries the
// newer set-time. Neither "old" outcome is a standing lock -- both fall
// back to coasting, since nothing confirmed position or time this
// window.
func (s *Scheduler) mergeCache() {
	now := s.clk.NowUs()

	cacheThreeDFresh := s.cache.ThreeD.Present() &&
		(!s.active.ThreeD.Present() || s.cache.ThreeD.TimeAtSet > s.active.ThreeD.TimeAtSet)
	cacheTimeFresh := s.cache.TimeOnly.Present() &&
		(!s.active.TimeOnly.Present() || s.cache.TimeOnly.TimeAtSet > s.active.TimeOnly.TimeAtSet)

	switch {
	case cacheThreeDFresh:
		s.active.ThreeD = s.cache.ThreeD
		s.emit("APPLY_CACHE_NEW_3D_PLUS")
		windowStartUs := s.windowAfter(s.active.ThreeD.Fix.Fix, s.active.ThreeD.TimeAtSet, now)
		s.prepareWindow(now, windowStartUs, true)
	case cacheTimeFresh:
		s.active.TimeOnly = s.cache.TimeOnly
		s.emit("APPLY_CACHE_NEW_TIME")
		windowStartUs := s.windowAfter(s.active.TimeOnly.Fix.Fix, s.active.TimeOnly.TimeAtSet, now)
		s.scheduleCoast(now, windowStartUs)
	case s.active.ThreeD.Present() && s.active.ThreeD.TimeAtSet >= s.active.TimeOnly.TimeAtSet:
		// No fresh lock, and the old 3D fix has the most recent time: treat
		// it like a coast, not a lock, so a stale fix doesn't forever
		// suppress the coast-overrun watchdog.
		s.emit("APPLY_CACHE_OLD_3D_PLUS")
		windowStartUs := s.windowAfter(s.active.ThreeD.Fix.Fix, s.active.ThreeD.TimeAtSet, now)
		s.scheduleCoast(now, windowStartUs)
	default:
		s.emit("APPLY_CACHE_OLD_TIME")
		windowStartUs := s.windowAfter(s.active.TimeOnly.Fix.Fix, s.active.TimeOnly.TimeAtSet, now)
		s.scheduleCoast(now, windowStartUs)
	}

	s.cache.Reset()
}

// windowAfter anchors the window math at setUs, the instant the fix was
// recorded, then steps forward whole 10-minute cycles until past nowUs.
func (s *Scheduler) windowAfter(f gpsfix.Fix, setUs, nowUs int64) int64 {
	w := window.NextWindowUs(s.cfg.StartMinute, f.Minute, f.Second, f.Millisecond*1000, setUs)
	for w <= nowUs {
		w += 5 * twoMinutesUs
	}
	return w
}

func (s *Scheduler) emit(tag string) {
	s.sink.Emit(tag, s.clk.NowUs())
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
