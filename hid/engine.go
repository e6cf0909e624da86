// Package hid interprets compiled bindings into USB HID transport calls and
// owns the asynchronous consumer-report queue.
package hid

import (
	"keypad-go/hw"
	"keypad-go/types"
	"keypad-go/x/mathx"
)

const (
	// defaultHoldMs substitutes for a zero hold so low-speed hosts reliably
	// see the key-down before the release.
	defaultHoldMs = 10

	// directPulseMs separates a direct consumer usage from its neutral.
	directPulseMs = 5
)

type Engine struct {
	tr    hw.Transport
	clock hw.Clock
	queue ConsumerQueue
}

func New(tr hw.Transport, clock hw.Clock) *Engine {
	return &Engine{tr: tr, clock: clock}
}

// HandleButton runs the binding of button index under the given trigger.
// Indices beyond the compiled table are ignored.
func (e *Engine) HandleButton(layout *types.Layout, index int, mode types.TriggerMode) {
	if index < 0 || index >= len(layout.Buttons) {
		return
	}
	e.Run(&layout.Buttons[index].Binding, mode)
}

// HandleEncoder runs one detent of encoder index as a Click trigger.
func (e *Engine) HandleEncoder(layout *types.Layout, index int, clockwise bool) {
	if index < 0 || index >= len(layout.Encoders) {
		return
	}
	b := &layout.Encoders[index].CounterClockwise
	if clockwise {
		b = &layout.Encoders[index].Clockwise
	}
	e.Run(b, types.TriggerClick)
}

// Run executes a binding's step sequence once. Sequences fire on Press and
// Click; Release is a no-op by design, since every step already released
// what it pressed. Execution blocks for the steps' hold and gap times, which
// is accepted: bindings are capped at MaxSteps and authored deliberately.
func (e *Engine) Run(b *types.HidBinding, mode types.TriggerMode) {
	if mode == types.TriggerRelease {
		return
	}
	steps := b.Steps
	if len(steps) > types.MaxSteps {
		steps = steps[:types.MaxSteps]
	}
	for _, step := range steps {
		switch st := step.(type) {
		case types.KeyStep:
			e.runKey(st)
		case types.PauseStep:
			e.wait(st.GapMs)
		case types.MouseStep:
			e.runMouse(st)
			e.wait(st.GapMs)
		case types.FunctionStep:
			e.runFunction(st, mode)
			e.wait(st.GapMs)
		}
	}
}

// Service advances the consumer queue by one step. Called once per scheduler
// tick, independent of trigger activity.
func (e *Engine) Service() {
	e.queue.Service(e.tr)
}

// Queue exposes the consumer queue for the scheduler's diagnostics trace.
func (e *Engine) Queue() *ConsumerQueue { return &e.queue }

func (e *Engine) runKey(st types.KeyStep) {
	if st.Modifiers&types.ModCtrl != 0 {
		e.tr.PressKey(KeyLeftCtrl)
	}
	if st.Modifiers&types.ModShift != 0 {
		e.tr.PressKey(KeyLeftShift)
	}
	if st.Modifiers&types.ModAlt != 0 {
		e.tr.PressKey(KeyLeftAlt)
	}
	if st.Modifiers&types.ModGUI != 0 {
		e.tr.PressKey(KeyLeftGUI)
	}
	if st.Keycode != 0 {
		e.tr.PressKey(st.Keycode)
	}

	hold := uint32(st.HoldMs)
	if hold == 0 {
		hold = defaultHoldMs
	}
	e.clock.Delay(hold)
	e.tr.ReleaseKeys()
	e.wait(st.GapMs)
}

func (e *Engine) runMouse(st types.MouseStep) {
	// Transport deltas are signed; compiled values above 127 saturate.
	v := int8(mathx.Min(st.Value, 127))
	switch st.Op {
	case types.PointerMoveUp:
		e.tr.MouseMove(0, -v)
	case types.PointerMoveDown:
		e.tr.MouseMove(0, v)
	case types.PointerMoveLeft:
		e.tr.MouseMove(-v, 0)
	case types.PointerMoveRight:
		e.tr.MouseMove(v, 0)
	case types.PointerLeftClick:
		e.tr.MouseClick(hw.MouseLeft)
	case types.PointerRightClick:
		e.tr.MouseClick(hw.MouseRight)
	case types.PointerScrollUp:
		e.tr.MouseScroll(v)
	case types.PointerScrollDown:
		e.tr.MouseScroll(-v)
	}
}

func (e *Engine) runFunction(st types.FunctionStep, mode types.TriggerMode) {
	n := mathx.Max(int(st.Repeat), 1)
	for i := 0; i < n; i++ {
		e.invoke(st.Action, mode)
	}
}

// invoke dispatches one well-known action. Volume changes are queued so the
// one-report-in-flight transport is never overrun; the rest send directly,
// fire-and-forget.
func (e *Engine) invoke(a types.Action, mode types.TriggerMode) {
	switch a {
	case types.ActionVolumeUp:
		if mode == types.TriggerPress || mode == types.TriggerClick {
			e.queue.Bump(1)
		}
	case types.ActionVolumeDown:
		if mode == types.TriggerPress || mode == types.TriggerClick {
			e.queue.Bump(-1)
		}
	case types.ActionMute:
		e.pulse(UsageMute)
	case types.ActionPlayPause:
		e.pulse(UsagePlayPause)
	case types.ActionNextTrack:
		e.pulse(UsageScanNext)
	case types.ActionPreviousTrack:
		e.pulse(UsageScanPrevious)
	case types.ActionStop:
		e.pulse(UsageStop)
	case types.ActionNone:
	}
}

// pulse sends a direct consumer usage followed by its neutral. The usage is
// dropped (not retried) when a non-neutral code is already in flight or the
// slot is busy; if only the neutral cannot go out, the queue takes over the
// neutral so the in-flight invariant holds.
func (e *Engine) pulse(usage uint16) {
	if e.queue.AwaitingNeutral() {
		return
	}
	if !e.tr.TrySendConsumer(usage) {
		return
	}
	e.clock.Delay(directPulseMs)
	if !e.tr.TrySendConsumer(UsageNeutral) {
		e.queue.OweNeutral()
	}
}

func (e *Engine) wait(gapMs uint8) {
	if gapMs > 0 {
		e.clock.Delay(uint32(gapMs))
	}
}
