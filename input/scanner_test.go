package input

import (
	"testing"

	"keypad-go/hw"
	"keypad-go/types"
)

// ---------------- Fakes ----------------

type fakePin struct {
	number int
	level  bool
	pull   hw.Pull
}

func (p *fakePin) ConfigureInput(pull hw.Pull) error {
	p.pull = pull
	return nil
}
func (p *fakePin) Get() bool   { return p.level }
func (p *fakePin) Number() int { return p.number }

type fakeFactory struct {
	pins    map[int]*fakePin
	missing map[int]bool
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{pins: make(map[int]*fakePin), missing: make(map[int]bool)}
}

func (f *fakeFactory) ByNumber(n int) (hw.GPIOPin, bool) {
	if f.missing[n] {
		return nil, false
	}
	p, ok := f.pins[n]
	if !ok {
		p = &fakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}

func (f *fakeFactory) set(n int, level bool) {
	if p, ok := f.pins[n]; ok {
		p.level = level
	}
}

type buttonEvent struct {
	index int
	mode  types.TriggerMode
}

type encoderEvent struct {
	index     int
	clockwise bool
}

type recordSink struct {
	buttons  []buttonEvent
	encoders []encoderEvent
}

func (s *recordSink) Button(index int, mode types.TriggerMode) {
	s.buttons = append(s.buttons, buttonEvent{index, mode})
}

func (s *recordSink) Encoder(index int, clockwise bool) {
	s.encoders = append(s.encoders, encoderEvent{index, clockwise})
}

func (s *recordSink) reset() {
	s.buttons = nil
	s.encoders = nil
}

func buttonLayout(bindings ...types.ButtonBinding) *types.Layout {
	return &types.Layout{Buttons: bindings}
}

// ---------------- Buttons ----------------

func TestButtonEdges(t *testing.T) {
	f := newFakeFactory()
	layout := buttonLayout(
		types.ButtonBinding{Pin: 2, ActiveLow: true},
		types.ButtonBinding{Pin: 3},
	)
	s := New(f, layout)

	// Active-low idles high.
	f.set(2, true)
	f.set(3, false)
	sink := &recordSink{}
	s.Seed(sink)
	if len(sink.buttons) != 0 {
		t.Fatalf("idle seed produced events: %v", sink.buttons)
	}

	sink.reset()
	f.set(2, false) // active-low press
	f.set(3, true)  // active-high press
	s.Poll(sink)
	want := []buttonEvent{
		{0, types.TriggerPress},
		{1, types.TriggerPress},
	}
	if len(sink.buttons) != 2 || sink.buttons[0] != want[0] || sink.buttons[1] != want[1] {
		t.Fatalf("press pass: got %v, want %v", sink.buttons, want)
	}

	// No change, no events.
	sink.reset()
	s.Poll(sink)
	if len(sink.buttons) != 0 {
		t.Fatalf("steady pass produced events: %v", sink.buttons)
	}

	sink.reset()
	f.set(2, true)
	f.set(3, false)
	s.Poll(sink)
	if len(sink.buttons) != 2 ||
		sink.buttons[0].mode != types.TriggerRelease ||
		sink.buttons[1].mode != types.TriggerRelease {
		t.Fatalf("release pass: got %v", sink.buttons)
	}
}

func TestSeedSynthesizesPressForHeldButton(t *testing.T) {
	f := newFakeFactory()
	layout := buttonLayout(types.ButtonBinding{Pin: 5, ActiveLow: true})
	s := New(f, layout)

	f.set(5, false) // held at power-on
	sink := &recordSink{}
	s.Seed(sink)

	if len(sink.buttons) != 1 || sink.buttons[0] != (buttonEvent{0, types.TriggerPress}) {
		t.Fatalf("seed: got %v, want synthesized press", sink.buttons)
	}
	if !s.Active(0) {
		t.Error("Active(0) false after seeded press")
	}

	// The held button must not re-trigger on the next pass.
	sink.reset()
	s.Poll(sink)
	if len(sink.buttons) != 0 {
		t.Fatalf("poll after seed produced events: %v", sink.buttons)
	}
}

func TestUnknownPinKeepsIndicesAligned(t *testing.T) {
	f := newFakeFactory()
	f.missing[9] = true
	layout := buttonLayout(
		types.ButtonBinding{Pin: 9},
		types.ButtonBinding{Pin: 4},
	)
	s := New(f, layout)
	sink := &recordSink{}
	s.Seed(sink)

	f.set(4, true)
	s.Poll(sink)
	if len(sink.buttons) != 1 || sink.buttons[0].index != 1 {
		t.Fatalf("expected press on index 1, got %v", sink.buttons)
	}
	if s.Active(0) {
		t.Error("dead row reads active")
	}
}

func TestActiveOutOfRange(t *testing.T) {
	s := New(newFakeFactory(), buttonLayout())
	if s.Active(-1) || s.Active(0) || s.Active(99) {
		t.Error("out-of-range Active must read false")
	}
}

// ---------------- Encoders ----------------

// Quadrature samples for one clockwise cycle, as (A, B) levels.
var cwCycle = [4][2]bool{
	{false, false},
	{true, false},
	{true, true},
	{false, true},
}

func encoderHarness(t *testing.T) (*fakeFactory, *Scanner, *recordSink) {
	t.Helper()
	f := newFakeFactory()
	layout := &types.Layout{
		Encoders: []types.EncoderBinding{{PinA: 20, PinB: 21}},
	}
	s := New(f, layout)
	f.set(20, cwCycle[0][0])
	f.set(21, cwCycle[0][1])
	sink := &recordSink{}
	s.Seed(sink)
	return f, s, sink
}

func stepEncoder(f *fakeFactory, s *Scanner, sink *recordSink, phase int) {
	f.set(20, cwCycle[phase&3][0])
	f.set(21, cwCycle[phase&3][1])
	s.Poll(sink)
}

func TestEncoderOneDetentClockwise(t *testing.T) {
	f, s, sink := encoderHarness(t)

	for p := 1; p <= 4; p++ {
		stepEncoder(f, s, sink, p)
	}
	if len(sink.encoders) != 1 || !sink.encoders[0].clockwise {
		t.Fatalf("full cycle: got %v, want one clockwise click", sink.encoders)
	}
}

func TestEncoderOneDetentCounterClockwise(t *testing.T) {
	f, s, sink := encoderHarness(t)

	for p := 3; p >= 0; p-- {
		stepEncoder(f, s, sink, p)
	}
	if len(sink.encoders) != 1 || sink.encoders[0].clockwise {
		t.Fatalf("reverse cycle: got %v, want one counter-clockwise click", sink.encoders)
	}
}

func TestEncoderOverRotationCarries(t *testing.T) {
	f, s, sink := encoderHarness(t)

	// Six counts: one click now, two counts banked.
	for p := 1; p <= 6; p++ {
		stepEncoder(f, s, sink, p)
	}
	if len(sink.encoders) != 1 {
		t.Fatalf("6 counts: got %d clicks, want 1", len(sink.encoders))
	}

	// Two more counts complete the banked detent.
	for p := 7; p <= 8; p++ {
		stepEncoder(f, s, sink, p)
	}
	if len(sink.encoders) != 2 {
		t.Fatalf("8 counts: got %d clicks, want 2", len(sink.encoders))
	}
}

func TestEncoderReversalDiscardsPartialDetent(t *testing.T) {
	f, s, sink := encoderHarness(t)

	// Two counts forward, then back to start: no click either way.
	stepEncoder(f, s, sink, 1)
	stepEncoder(f, s, sink, 2)
	stepEncoder(f, s, sink, 1)
	stepEncoder(f, s, sink, 0)
	if len(sink.encoders) != 0 {
		t.Fatalf("partial rotation produced clicks: %v", sink.encoders)
	}
}

func TestEncoderInvalidTransitionIgnored(t *testing.T) {
	f, s, sink := encoderHarness(t)

	// Jump two states at once, as bounce does. No count may register, and
	// a following legal cycle still decodes cleanly.
	f.set(20, cwCycle[2][0])
	f.set(21, cwCycle[2][1])
	s.Poll(sink)
	if len(sink.encoders) != 0 {
		t.Fatalf("invalid transition produced clicks: %v", sink.encoders)
	}

	for p := 3; p <= 6; p++ {
		stepEncoder(f, s, sink, p)
	}
	if len(sink.encoders) != 1 || !sink.encoders[0].clockwise {
		t.Fatalf("cycle after glitch: got %v, want one clockwise click", sink.encoders)
	}
}
