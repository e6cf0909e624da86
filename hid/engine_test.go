package hid

import (
	"testing"

	"keypad-go/hw"
	"keypad-go/types"
)

// ---------------- Fakes ----------------

type op struct {
	kind  string // "key", "release", "consumer", "move", "click", "scroll", "delay"
	code  uint16
	dx    int8
	dy    int8
	btn   hw.MouseButton
	ticks int8
	ms    uint32
}

// fakeRig records transport calls and delays in one interleaved log so tests
// can assert ordering across both.
type fakeRig struct {
	ops      []op
	busy     int // TrySendConsumer failures remaining
	failAt   int // 1-based consumer attempt that reports busy, 0 = never
	attempts int
	now      uint32
}

func (r *fakeRig) PressKey(code uint16) { r.ops = append(r.ops, op{kind: "key", code: code}) }
func (r *fakeRig) ReleaseKeys()         { r.ops = append(r.ops, op{kind: "release"}) }

func (r *fakeRig) TrySendConsumer(usage uint16) bool {
	r.attempts++
	if r.busy > 0 {
		r.busy--
		return false
	}
	if r.failAt != 0 && r.attempts == r.failAt {
		return false
	}
	r.ops = append(r.ops, op{kind: "consumer", code: usage})
	return true
}

func (r *fakeRig) MouseMove(dx, dy int8) { r.ops = append(r.ops, op{kind: "move", dx: dx, dy: dy}) }
func (r *fakeRig) MouseClick(btn hw.MouseButton) {
	r.ops = append(r.ops, op{kind: "click", btn: btn})
}
func (r *fakeRig) MouseScroll(ticks int8) { r.ops = append(r.ops, op{kind: "scroll", ticks: ticks}) }

func (r *fakeRig) Millis() uint32 { return r.now }
func (r *fakeRig) Delay(ms uint32) {
	r.now += ms
	r.ops = append(r.ops, op{kind: "delay", ms: ms})
}

func newEngine() (*Engine, *fakeRig) {
	rig := &fakeRig{}
	return New(rig, rig), rig
}

func assertOps(t *testing.T, got, want []op) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("op count: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func oneStep(s types.HidStep) *types.HidBinding {
	return &types.HidBinding{Steps: []types.HidStep{s}}
}

// ---------------- Key steps ----------------

func TestKeyStepWithModifiers(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.KeyStep{
		Keycode:   0x04,
		Modifiers: types.ModCtrl | types.ModShift,
		HoldMs:    25,
		GapMs:     5,
	}), types.TriggerPress)

	assertOps(t, rig.ops, []op{
		{kind: "key", code: KeyLeftCtrl},
		{kind: "key", code: KeyLeftShift},
		{kind: "key", code: 0x04},
		{kind: "delay", ms: 25},
		{kind: "release"},
		{kind: "delay", ms: 5},
	})
}

func TestKeyStepZeroHoldUsesDefault(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.KeyStep{Keycode: 0x1E}), types.TriggerPress)

	assertOps(t, rig.ops, []op{
		{kind: "key", code: 0x1E},
		{kind: "delay", ms: defaultHoldMs},
		{kind: "release"},
	})
}

func TestModifierOnlyStep(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.KeyStep{Modifiers: types.ModGUI}), types.TriggerPress)

	assertOps(t, rig.ops, []op{
		{kind: "key", code: KeyLeftGUI},
		{kind: "delay", ms: defaultHoldMs},
		{kind: "release"},
	})
}

func TestReleaseTriggerIsNoOp(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.KeyStep{Keycode: 0x04}), types.TriggerRelease)
	if len(rig.ops) != 0 {
		t.Fatalf("release trigger produced ops: %v", rig.ops)
	}
}

func TestSequenceTruncatedAtMaxSteps(t *testing.T) {
	e, rig := newEngine()
	b := &types.HidBinding{}
	for i := 0; i < types.MaxSteps+4; i++ {
		b.Steps = append(b.Steps, types.PauseStep{GapMs: 1})
	}
	e.Run(b, types.TriggerPress)
	if len(rig.ops) != types.MaxSteps {
		t.Fatalf("ran %d steps, want %d", len(rig.ops), types.MaxSteps)
	}
}

// ---------------- Mouse steps ----------------

func TestMouseOps(t *testing.T) {
	e, rig := newEngine()
	steps := []types.HidStep{
		types.MouseStep{Op: types.PointerMoveUp, Value: 10},
		types.MouseStep{Op: types.PointerMoveRight, Value: 3},
		types.MouseStep{Op: types.PointerLeftClick},
		types.MouseStep{Op: types.PointerRightClick},
		types.MouseStep{Op: types.PointerScrollUp, Value: 2},
		types.MouseStep{Op: types.PointerScrollDown, Value: 1},
	}
	e.Run(&types.HidBinding{Steps: steps}, types.TriggerPress)

	assertOps(t, rig.ops, []op{
		{kind: "move", dx: 0, dy: -10},
		{kind: "move", dx: 3, dy: 0},
		{kind: "click", btn: hw.MouseLeft},
		{kind: "click", btn: hw.MouseRight},
		{kind: "scroll", ticks: 2},
		{kind: "scroll", ticks: -1},
	})
}

func TestMouseValueSaturates(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.MouseStep{Op: types.PointerMoveDown, Value: 200}), types.TriggerPress)

	assertOps(t, rig.ops, []op{{kind: "move", dx: 0, dy: 127}})
}

// ---------------- Function steps: direct actions ----------------

func TestDirectActionPulse(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.FunctionStep{Action: types.ActionPlayPause}), types.TriggerPress)

	assertOps(t, rig.ops, []op{
		{kind: "consumer", code: UsagePlayPause},
		{kind: "delay", ms: directPulseMs},
		{kind: "consumer", code: UsageNeutral},
	})
}

func TestDirectActionRepeat(t *testing.T) {
	e, rig := newEngine()
	e.Run(oneStep(types.FunctionStep{Action: types.ActionNextTrack, Repeat: 3}), types.TriggerPress)

	sends := 0
	for _, o := range rig.ops {
		if o.kind == "consumer" && o.code == UsageScanNext {
			sends++
		}
	}
	if sends != 3 {
		t.Fatalf("sent %d usages, want 3", sends)
	}
}

func TestDirectActionDroppedWhenBusy(t *testing.T) {
	e, rig := newEngine()
	rig.busy = 1
	e.Run(oneStep(types.FunctionStep{Action: types.ActionMute}), types.TriggerPress)

	if len(rig.ops) != 0 {
		t.Fatalf("busy slot still produced ops: %v", rig.ops)
	}
	if e.Queue().AwaitingNeutral() {
		t.Error("dropped usage must not owe a neutral")
	}
}

func TestDirectActionNeutralHandedToQueue(t *testing.T) {
	e, rig := newEngine()
	// The usage goes out on attempt 1; its immediate neutral on attempt 2
	// hits a busy slot, so the queue takes over the neutral.
	rig.failAt = 2
	e.Run(oneStep(types.FunctionStep{Action: types.ActionStop}), types.TriggerPress)

	if !e.Queue().AwaitingNeutral() {
		t.Fatal("queue must take over the unsent neutral")
	}

	e.Service()
	last := rig.ops[len(rig.ops)-1]
	if last.kind != "consumer" || last.code != UsageNeutral {
		t.Fatalf("service did not send the owed neutral: %v", rig.ops)
	}
	if e.Queue().AwaitingNeutral() {
		t.Error("neutral owed after successful send")
	}
}

func TestPulseSkippedWhileAwaitingNeutral(t *testing.T) {
	e, rig := newEngine()
	e.Queue().OweNeutral()
	e.Run(oneStep(types.FunctionStep{Action: types.ActionMute}), types.TriggerPress)

	if len(rig.ops) != 0 {
		t.Fatalf("pulse ran with a code in flight: %v", rig.ops)
	}
}

// ---------------- Function steps: queued volume ----------------

func TestVolumeAccumulatesAndDrains(t *testing.T) {
	e, rig := newEngine()
	vol := oneStep(types.FunctionStep{Action: types.ActionVolumeUp})
	for i := 0; i < 3; i++ {
		e.Run(vol, types.TriggerClick)
	}
	if e.Queue().Pending() != 3 {
		t.Fatalf("pending = %d, want 3", e.Queue().Pending())
	}

	// Each detent drains as a (usage, neutral) pair over two ticks.
	for i := 0; i < 6; i++ {
		e.Service()
	}
	want := []op{
		{kind: "consumer", code: UsageVolumeIncrement},
		{kind: "consumer", code: UsageNeutral},
		{kind: "consumer", code: UsageVolumeIncrement},
		{kind: "consumer", code: UsageNeutral},
		{kind: "consumer", code: UsageVolumeIncrement},
		{kind: "consumer", code: UsageNeutral},
	}
	assertOps(t, rig.ops, want)
	if e.Queue().Pending() != 0 {
		t.Errorf("pending = %d after drain", e.Queue().Pending())
	}
}

func TestVolumeOppositeDirectionsCancel(t *testing.T) {
	e, _ := newEngine()
	up := oneStep(types.FunctionStep{Action: types.ActionVolumeUp})
	down := oneStep(types.FunctionStep{Action: types.ActionVolumeDown})

	e.Run(up, types.TriggerClick)
	e.Run(down, types.TriggerClick)
	e.Run(down, types.TriggerClick)

	if e.Queue().Pending() != -1 {
		t.Fatalf("pending = %d, want -1", e.Queue().Pending())
	}
}

func TestVolumeIgnoredOnRelease(t *testing.T) {
	e, _ := newEngine()
	e.Run(oneStep(types.FunctionStep{Action: types.ActionVolumeUp}), types.TriggerRelease)
	if e.Queue().Pending() != 0 {
		t.Fatalf("release trigger queued volume: %d", e.Queue().Pending())
	}
}

func TestServiceRetriesOnBusyWithoutStateChange(t *testing.T) {
	e, rig := newEngine()
	e.Queue().Bump(1)

	rig.busy = 2
	e.Service()
	e.Service()
	if e.Queue().Pending() != 1 || e.Queue().AwaitingNeutral() {
		t.Fatalf("busy ticks changed state: pending=%d awaiting=%v",
			e.Queue().Pending(), e.Queue().AwaitingNeutral())
	}

	e.Service()
	assertOps(t, rig.ops, []op{{kind: "consumer", code: UsageVolumeIncrement}})
	if !e.Queue().AwaitingNeutral() {
		t.Error("sent usage must await its neutral")
	}
}

// ---------------- Table dispatch ----------------

func TestHandleButtonBounds(t *testing.T) {
	e, rig := newEngine()
	layout := &types.Layout{Buttons: []types.ButtonBinding{
		{Binding: *oneStep(types.KeyStep{Keycode: 0x05})},
	}}

	e.HandleButton(layout, -1, types.TriggerPress)
	e.HandleButton(layout, 1, types.TriggerPress)
	if len(rig.ops) != 0 {
		t.Fatalf("out-of-range index ran a binding: %v", rig.ops)
	}

	e.HandleButton(layout, 0, types.TriggerPress)
	if len(rig.ops) == 0 || rig.ops[0].code != 0x05 {
		t.Fatalf("in-range index did not run: %v", rig.ops)
	}
}

func TestHandleEncoderSelectsDirection(t *testing.T) {
	e, rig := newEngine()
	layout := &types.Layout{Encoders: []types.EncoderBinding{{
		Clockwise:        *oneStep(types.KeyStep{Keycode: 0x52}),
		CounterClockwise: *oneStep(types.KeyStep{Keycode: 0x51}),
	}}}

	e.HandleEncoder(layout, 0, true)
	if rig.ops[0].code != 0x52 {
		t.Fatalf("clockwise detent ran %v", rig.ops)
	}

	rig.ops = nil
	e.HandleEncoder(layout, 0, false)
	if rig.ops[0].code != 0x51 {
		t.Fatalf("counter-clockwise detent ran %v", rig.ops)
	}

	rig.ops = nil
	e.HandleEncoder(layout, 5, true)
	if len(rig.ops) != 0 {
		t.Fatalf("out-of-range encoder ran a binding: %v", rig.ops)
	}
}
