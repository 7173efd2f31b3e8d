// Package planner implements the slot behavior decision matrix: for each
// of the five transmission slots, whether the user script runs and
// whether the outgoing message is custom, default, or suppressed.
package planner

// NumSlots is the number of transmission slots per window.
const NumSlots = 5

// MsgSend is the outgoing message disposition for a slot.
type MsgSend int

const (
	MsgNone MsgSend = iota
	MsgDefault
	MsgCustom
)

func (m MsgSend) String() string {
	switch m {
	case MsgNone:
		return "none"
	case MsgDefault:
		return "default"
	case MsgCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// DefaultPayload identifies which built-in payload, if any, a slot falls
// back to. It replaces the source firmware's captured closure with a
// plain enum the scheduler switches on by slot identity.
type DefaultPayload int

const (
	DefaultNone DefaultPayload = iota
	DefaultRegularType1
	DefaultBasicTelemetry
)

// defaultPayloadForSlot is the fixed per-slot built-in payload: slot 1 is
// the regular beacon, slot 2 is basic telemetry, slots 3-5 have none.
func defaultPayloadForSlot(slot int) DefaultPayload {
	switch slot {
	case 1:
		return DefaultRegularType1
	case 2:
		return DefaultBasicTelemetry
	default:
		return DefaultNone
	}
}

// Inputs are the per-slot facts the planner decides from.
type Inputs struct {
	Slot         int
	HaveGpsLock  bool
	JsUsesGpsApi bool
	JsUsesMsgApi bool
	HasMsgDef    bool
}

// Behavior is the planner's decision for one slot.
type Behavior struct {
	RunJs          bool
	MsgSend        MsgSend
	HasDefault     bool
	CanSendDefault bool
	Default        DefaultPayload
}

// Plan decides RunJs and MsgSend per the decision table, then applies the
// missing-definition override.
func Plan(in Inputs) Behavior {
	msgSendDefault := MsgNone
	if defaultPayloadForSlot(in.Slot) != DefaultNone {
		msgSendDefault = MsgDefault
	}

	runJs, msgSend := decide(in.HaveGpsLock, in.JsUsesGpsApi, in.JsUsesMsgApi, msgSendDefault)

	if !in.HasMsgDef {
		if msgSendDefault == MsgNone || !in.HaveGpsLock {
			msgSend = MsgNone
		} else {
			msgSend = MsgDefault
		}
	}

	return Behavior{
		RunJs:          runJs,
		MsgSend:        msgSend,
		HasDefault:     msgSendDefault != MsgNone,
		CanSendDefault: in.HaveGpsLock,
		Default:        defaultPayloadForSlot(in.Slot),
	}
}

// decide implements the base decision table (before the missing-msgdef
// override), keyed on (gps, usesGps, usesMsg).
func decide(gps, usesGps, usesMsg bool, msgSendDefault MsgSend) (runJs bool, msgSend MsgSend) {
	switch {
	case !gps && !usesGps && !usesMsg:
		return true, MsgNone
	case !gps && !usesGps && usesMsg:
		return true, MsgCustom
	case !gps && usesGps && !usesMsg:
		return false, MsgNone
	case !gps && usesGps && usesMsg:
		return false, MsgNone
	case gps && !usesGps && !usesMsg:
		return true, msgSendDefault
	case gps && !usesGps && usesMsg:
		return true, MsgCustom
	case gps && usesGps && !usesMsg:
		return true, msgSendDefault
	default: // gps && usesGps && usesMsg
		return true, MsgCustom
	}
}

// PlanAll runs Plan for every slot 1..NumSlots. inputsFor supplies the
// per-slot facts; it is called once per slot, just before lockout start,
// matching the "recomputed once per window" lifecycle rule.
func PlanAll(inputsFor func(slot int) Inputs) map[int]Behavior {
	out := make(map[int]Behavior, NumSlots)
	for slot := 1; slot <= NumSlots; slot++ {
		out[slot] = Plan(inputsFor(slot))
	}
	return out
}
