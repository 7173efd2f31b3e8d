// Package simcollab provides in-memory fakes of the scheduler's
// collaborator capabilities (GPS, radio, clock-speed, script runner,
// watchdog), driven by scripted per-slot configuration rather than real
// hardware. It plays the role the original firmware's "testing_" branch
// played, factored out as the dependency-injected collaborator the
// spec's design notes call for: production code implements the same
// interfaces against real hardware, nothing in the scheduler branches on
// which one is in play.
package simcollab

import (
	"context"
	"time"

	"github.com/copilotcontrol/scheduler/pkg/scheduler"
)

// GPS is a scripted GPS capability. Tests call Request/Cancel counts to
// assert against, and drive fixes into the scheduler directly via its
// OnGpsTimeLock/OnGps3DPlusLock methods.
type GPS struct {
	RequestCount int
	CancelCount  int
}

func (g *GPS) RequestNewGPSLock()      { g.RequestCount++ }
func (g *GPS) CancelRequestNewGPSLock() { g.CancelCount++ }

// Radio is a scripted radio capability. It tracks whether it is active
// and counts every transmit call by kind, without actually keying
// anything.
type Radio struct {
	active bool

	WarmupCount        int
	StopCount          int
	RegularType1Count  int
	BasicTelemetryCount int
	UserDefinedCount   int
}

func (r *Radio) IsActive() bool { return r.active }

func (r *Radio) StartWarmup() {
	r.active = true
	r.WarmupCount++
}

func (r *Radio) Stop() {
	r.active = false
	r.StopCount++
}

func (r *Radio) SendRegularType1(ctx context.Context, quitAfterMs int) error {
	r.RegularType1Count++
	return nil
}

func (r *Radio) SendBasicTelemetry(ctx context.Context, quitAfterMs int) error {
	r.BasicTelemetryCount++
	return nil
}

func (r *Radio) SendUserDefined(ctx context.Context, quitAfterMs int) error {
	r.UserDefinedCount++
	return nil
}

// ClockSpeed is a scripted clock-speed capability, counting transitions.
type ClockSpeed struct {
	HighSpeedCount int
	LowSpeedCount  int
}

func (c *ClockSpeed) GoHighSpeed() { c.HighSpeedCount++ }
func (c *ClockSpeed) GoLowSpeed()  { c.LowSpeedCount++ }

// SlotScript is the scripted behavior of one slot's script and message
// definition, as the planner and script runner would see them.
type SlotScript struct {
	UsesGps   bool
	UsesMsg   bool
	HasMsgDef bool

	// RunOk is what RunSlot reports for this slot's script execution.
	// The zero value (including every unconfigured slot) reports a failed
	// run; set RunOk=true to simulate a successful one.
	RunOk bool

	// MsgStateStr is the optional diagnostic carried through to the
	// marker sink on JS_EXEC, mirroring the original firmware's practice
	// of logging the message-binding state after every script run.
	MsgStateStr string
}

// ScriptRunner is a scripted script-runner capability keyed by slot
// number (1..planner.NumSlots).
type ScriptRunner struct {
	Slots map[int]SlotScript

	RunCount map[int]int
}

// NewScriptRunner creates a ScriptRunner with no slots configured; every
// slot defaults to "no script, no definition" until set.
func NewScriptRunner() *ScriptRunner {
	return &ScriptRunner{Slots: map[int]SlotScript{}, RunCount: map[int]int{}}
}

func (s *ScriptRunner) ScriptAPIUsage(slot int) (usesGps, usesMsg bool) {
	cfg := s.Slots[slot]
	return cfg.UsesGps, cfg.UsesMsg
}

func (s *ScriptRunner) SlotHasMsgDef(slot int) bool {
	return s.Slots[slot].HasMsgDef
}

func (s *ScriptRunner) RunSlot(ctx context.Context, slot int, fix *scheduler.Fix3DPlusView) (scheduler.RunResult, error) {
	if s.RunCount == nil {
		s.RunCount = map[int]int{}
	}
	s.RunCount[slot]++
	cfg := s.Slots[slot]
	return scheduler.RunResult{Ok: cfg.RunOk, MsgStateStr: cfg.MsgStateStr}, nil
}

func (s *ScriptRunner) ScriptTimeLimit() time.Duration {
	return 2 * time.Second
}

// Watchdog is a scripted watchdog capability, recording every
// PanicReboot invocation for property P6 ("coast bound") assertions.
type Watchdog struct {
	FeedCount    int
	RebootReasons []string
}

func (w *Watchdog) Feed() { w.FeedCount++ }

func (w *Watchdog) PanicReboot(reason string) {
	w.RebootReasons = append(w.RebootReasons, reason)
}

// RebootCount is the number of times PanicReboot has fired.
func (w *Watchdog) RebootCount() int { return len(w.RebootReasons) }
