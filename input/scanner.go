// Package input turns raw pin levels into edge-triggered button events and
// discrete encoder rotation events. The scanner owns all per-input state,
// never blocks, and allocates only at construction.
package input

import (
	"keypad-go/hw"
	"keypad-go/types"
)

// Sink receives the events produced by one scan pass, in table order.
type Sink interface {
	Button(index int, mode types.TriggerMode)
	Encoder(index int, clockwise bool)
}

type Scanner struct {
	buttons  []buttonState
	encoders []encoderState
}

type buttonState struct {
	pin       hw.GPIOPin
	activeLow bool
	active    bool
}

type encoderState struct {
	pinA, pinB hw.GPIOPin

	prev     uint8 // previous 2-bit quadrature sample
	position int32
	reported int32
}

// New claims and configures the pins named by the layout tables. Rows whose
// pins the factory does not know stay in the table as dead inputs so indices
// keep lining up with the binding tables; a mismatched compiled table must
// never take the firmware down.
func New(pins hw.PinFactory, layout *types.Layout) *Scanner {
	s := &Scanner{
		buttons:  make([]buttonState, len(layout.Buttons)),
		encoders: make([]encoderState, len(layout.Encoders)),
	}

	for i := range layout.Buttons {
		b := &layout.Buttons[i]
		p, ok := pins.ByNumber(b.Pin)
		if !ok {
			continue
		}
		pull := hw.PullNone
		if b.ActiveLow {
			pull = hw.PullUp
		}
		_ = p.ConfigureInput(pull)
		s.buttons[i] = buttonState{pin: p, activeLow: b.ActiveLow}
	}

	for i := range layout.Encoders {
		e := &layout.Encoders[i]
		a, okA := pins.ByNumber(e.PinA)
		b, okB := pins.ByNumber(e.PinB)
		if !okA || !okB {
			continue
		}
		_ = a.ConfigureInput(hw.PullUp)
		_ = b.ConfigureInput(hw.PullUp)
		s.encoders[i] = encoderState{pinA: a, pinB: b}
	}

	return s
}

// Seed samples every input once to establish initial state. A button that is
// already active gets a synthesized Press so a key held through power-on is
// not missed. Encoders start at position zero from the current sample.
func (s *Scanner) Seed(sink Sink) {
	for i := range s.buttons {
		b := &s.buttons[i]
		if b.pin == nil {
			continue
		}
		b.active = b.level()
		if b.active && sink != nil {
			sink.Button(i, types.TriggerPress)
		}
	}
	for i := range s.encoders {
		e := &s.encoders[i]
		if e.pinA == nil {
			continue
		}
		e.prev = e.sample()
		e.position = 0
		e.reported = 0
	}
}

// Poll runs one scan pass: buttons first, then encoders, each in table
// order. Edges and detents are reported through sink.
func (s *Scanner) Poll(sink Sink) {
	for i := range s.buttons {
		b := &s.buttons[i]
		if b.pin == nil {
			continue
		}
		active := b.level()
		if active == b.active {
			continue
		}
		b.active = active
		mode := types.TriggerRelease
		if active {
			mode = types.TriggerPress
		}
		sink.Button(i, mode)
	}

	for i := range s.encoders {
		if s.encoders[i].pinA == nil {
			continue
		}
		s.encoders[i].advance(i, sink)
	}
}

// Active reports the last-sampled level of button i. Out-of-range indices
// read as inactive.
func (s *Scanner) Active(i int) bool {
	if i < 0 || i >= len(s.buttons) {
		return false
	}
	return s.buttons[i].active
}

// Buttons returns the number of buttons the scanner is tracking.
func (s *Scanner) Buttons() int { return len(s.buttons) }

func (b *buttonState) level() bool {
	v := b.pin.Get()
	if b.activeLow {
		return !v
	}
	return v
}
