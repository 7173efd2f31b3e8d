package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDecisionTable exercises the eight rows of the base decision matrix
// for a slot with no default payload (slot 3), so msgSendDefault is
// always "none" and the has-msg-def override never fires.
func TestDecisionTable(t *testing.T) {
	cases := []struct {
		gps, usesGps, usesMsg bool
		wantRunJs             bool
		wantMsgSend           MsgSend
	}{
		{false, false, false, true, MsgNone},
		{false, false, true, true, MsgCustom},
		{false, true, false, false, MsgNone},
		{false, true, true, false, MsgNone},
		{true, false, false, true, MsgNone}, // slot 3 has no default
		{true, false, true, true, MsgCustom},
		{true, true, false, true, MsgNone},
		{true, true, true, true, MsgCustom},
	}
	for _, c := range cases {
		b := Plan(Inputs{
			Slot:         3,
			HaveGpsLock:  c.gps,
			JsUsesGpsApi: c.usesGps,
			JsUsesMsgApi: c.usesMsg,
			HasMsgDef:    true,
		})
		assert.Equal(t, c.wantRunJs, b.RunJs, "%+v", c)
		assert.Equal(t, c.wantMsgSend, b.MsgSend, "%+v", c)
	}
}

func TestSlot1And2HaveDefaults(t *testing.T) {
	b1 := Plan(Inputs{Slot: 1, HaveGpsLock: true, HasMsgDef: true})
	assert.Equal(t, MsgDefault, b1.MsgSend)
	assert.Equal(t, DefaultRegularType1, b1.Default)
	assert.True(t, b1.HasDefault)

	b2 := Plan(Inputs{Slot: 2, HaveGpsLock: true, HasMsgDef: true})
	assert.Equal(t, MsgDefault, b2.MsgSend)
	assert.Equal(t, DefaultBasicTelemetry, b2.Default)
}

func TestMissingMsgDefOverride(t *testing.T) {
	// Slot 1 (has a default), script wants custom, but no msg def present,
	// and GPS is locked: falls back to default, not none.
	b := Plan(Inputs{Slot: 1, HaveGpsLock: true, JsUsesMsgApi: true, HasMsgDef: false})
	assert.Equal(t, MsgDefault, b.MsgSend)

	// Same but no GPS lock: forced to none even though slot 1 has a default.
	b2 := Plan(Inputs{Slot: 1, HaveGpsLock: false, JsUsesMsgApi: true, HasMsgDef: false})
	assert.Equal(t, MsgNone, b2.MsgSend)

	// Slot 3 (no default) with missing msg def: always none.
	b3 := Plan(Inputs{Slot: 3, HaveGpsLock: true, JsUsesMsgApi: true, HasMsgDef: false})
	assert.Equal(t, MsgNone, b3.MsgSend)
}

// TestIdempotence is P2: planning twice with identical inputs yields
// identical behavior.
func TestIdempotence(t *testing.T) {
	in := Inputs{Slot: 4, HaveGpsLock: true, JsUsesGpsApi: true, JsUsesMsgApi: false, HasMsgDef: true}
	a := Plan(in)
	b := Plan(in)
	assert.Equal(t, a, b)
}

func TestPlanAllCoversEverySlot(t *testing.T) {
	got := PlanAll(func(slot int) Inputs {
		return Inputs{Slot: slot, HaveGpsLock: true, HasMsgDef: true}
	})
	assert.Len(t, got, NumSlots)
	for slot := 1; slot <= NumSlots; slot++ {
		_, ok := got[slot]
		assert.True(t, ok, "slot %d missing", slot)
	}
}
