package types

// ------------------------
// Trigger modes
// ------------------------

// TriggerMode classifies one input transition. Click is a single-shot event
// with no separate press/release phase (one encoder detent).
type TriggerMode uint8

const (
	TriggerPress TriggerMode = iota
	TriggerRelease
	TriggerClick
)

// ------------------------
// Modifier bitmask (HidKeyStep.Modifiers)
// ------------------------

const (
	ModCtrl  uint8 = 1 << 0
	ModShift uint8 = 1 << 1
	ModAlt   uint8 = 1 << 2
	ModGUI   uint8 = 1 << 3
)

// ------------------------
// Pointer operations
// ------------------------

type PointerOp uint8

const (
	PointerMoveUp PointerOp = iota
	PointerMoveDown
	PointerMoveLeft
	PointerMoveRight
	PointerLeftClick
	PointerRightClick
	PointerScrollUp
	PointerScrollDown
)

// ------------------------
// Well-known actions
// ------------------------

// Action identifies a built-in function a step can invoke. The set is closed
// and dispatched through an exhaustive switch in the HID engine.
type Action uint8

const (
	ActionNone Action = iota
	ActionVolumeUp
	ActionVolumeDown
	ActionMute
	ActionPlayPause
	ActionNextTrack
	ActionPreviousTrack
	ActionStop
)

// ------------------------
// Steps
// ------------------------

// HidStep is one element of a binding's step sequence. It is a sealed sum
// type: exactly the four structs below implement it, and the engine matches
// them exhaustively.
type HidStep interface {
	hidStep()
}

// KeyStep presses Modifiers and Keycode, holds, releases everything, then
// waits GapMs. A zero HoldMs means the engine's default hold.
type KeyStep struct {
	Keycode   uint16
	Modifiers uint8
	HoldMs    uint8
	GapMs     uint8
}

// PauseStep waits GapMs and does nothing else.
type PauseStep struct {
	GapMs uint8
}

// MouseStep performs one pointer operation. Value is pixels for moves and
// ticks for scrolls; click operations ignore it.
type MouseStep struct {
	Op    PointerOp
	Value uint8
	GapMs uint8
}

// FunctionStep invokes Action Repeat times (zero means once).
type FunctionStep struct {
	Action Action
	Repeat uint8
	GapMs  uint8
}

func (KeyStep) hidStep()      {}
func (PauseStep) hidStep()    {}
func (MouseStep) hidStep()    {}
func (FunctionStep) hidStep() {}

// ------------------------
// Bindings
// ------------------------

// MaxSteps caps the length of a compiled step sequence. The layout compiler
// enforces it; the engine truncates defensively.
const MaxSteps = 16

// HidBinding is an ordered step sequence executed once per trigger.
type HidBinding struct {
	Steps []HidStep
}

// Empty reports whether the binding has no steps to run.
func (b *HidBinding) Empty() bool { return len(b.Steps) == 0 }
