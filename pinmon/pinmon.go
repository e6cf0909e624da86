// Package pinmon is the bring-up pin monitor: it watches every pin the
// compiled layout references, plus any spare pins handed to it, and reports
// confirmed level changes and periodic summaries over a UART. It replaces
// the whole engine when a build selects debug bring-up mode; nothing here
// runs in normal operation.
package pinmon

import (
	"context"

	"keypad-go/hw"
	"keypad-go/types"
	"keypad-go/x/conv"
)

const (
	defaultSummaryMs      = 1000
	defaultConfirmSamples = 3
	defaultConfirmDelayMs = 1

	// MaxPins bounds the watch table regardless of layout size.
	MaxPins = 40
)

// PinSpec names one pin to watch.
type PinSpec struct {
	Pin        int
	Pullup     bool
	FromLayout bool // referenced by the compiled layout (vs spare)
}

// Config tunes the monitor. Zero fields take defaults.
type Config struct {
	SummaryIntervalMs uint32
	ConfirmSamples    uint8 // re-reads needed to accept a change
	ConfirmDelayMs    uint8 // spacing between confirm re-reads
}

// Collect builds the watch list: layout pins first (pullups matching their
// configured polarity), then the spare pins, deduplicated, capped at
// MaxPins. Reserved pins (the monitor's own UART lines) are never watched.
func Collect(layout *types.Layout, spare, reserved []int) []PinSpec {
	specs := make([]PinSpec, 0, MaxPins)
	seen := make(map[int]bool, MaxPins)
	for _, pin := range reserved {
		seen[pin] = true
	}
	add := func(pin int, pullup, fromLayout bool) {
		if len(specs) >= MaxPins || seen[pin] {
			return
		}
		seen[pin] = true
		specs = append(specs, PinSpec{Pin: pin, Pullup: pullup, FromLayout: fromLayout})
	}

	for i := range layout.Buttons {
		b := &layout.Buttons[i]
		add(b.Pin, b.ActiveLow, true)
	}
	for i := range layout.Encoders {
		e := &layout.Encoders[i]
		add(e.PinA, true, true)
		add(e.PinB, true, true)
	}
	for _, pin := range spare {
		add(pin, true, false)
	}
	return specs
}

type entry struct {
	spec  PinSpec
	pin   hw.GPIOPin
	level bool
}

type Monitor struct {
	out   hw.UARTPort
	clock hw.Clock
	cfg   Config

	entries     []entry
	lastSummary uint32
}

// New configures every watched pin, samples the initial levels, and prints
// the banner plus one snapshot per pin. Pins the factory does not know are
// dropped from the watch list.
func New(out hw.UARTPort, pins hw.PinFactory, clock hw.Clock, specs []PinSpec, cfg Config) *Monitor {
	if cfg.SummaryIntervalMs == 0 {
		cfg.SummaryIntervalMs = defaultSummaryMs
	}
	if cfg.ConfirmSamples == 0 {
		cfg.ConfirmSamples = defaultConfirmSamples
	}
	if cfg.ConfirmDelayMs == 0 {
		cfg.ConfirmDelayMs = defaultConfirmDelayMs
	}

	m := &Monitor{out: out, clock: clock, cfg: cfg}
	for _, spec := range specs {
		p, ok := pins.ByNumber(spec.Pin)
		if !ok {
			continue
		}
		pull := hw.PullNone
		if spec.Pullup {
			pull = hw.PullUp
		}
		_ = p.ConfigureInput(pull)
		clock.Delay(1)
		m.entries = append(m.entries, entry{spec: spec, pin: p, level: p.Get()})
	}

	m.writeLine("pinmon: watching ", itoa(len(m.entries)), " pins")
	for i := range m.entries {
		m.printSnapshot(&m.entries[i])
	}
	m.lastSummary = clock.Millis()
	return m
}

// Tick samples every watched pin once and reports confirmed transitions,
// plus a summary line each interval.
func (m *Monitor) Tick() {
	for i := range m.entries {
		e := &m.entries[i]
		raw := e.pin.Get()
		if raw == e.level {
			continue
		}
		if !m.confirm(e, raw) {
			continue
		}
		e.level = raw
		m.printTransition(e)
	}

	now := m.clock.Millis()
	if now-m.lastSummary >= m.cfg.SummaryIntervalMs {
		m.lastSummary = now
		m.printSummary()
	}
}

// Run loops Tick with a short idle delay until the context ends.
func (m *Monitor) Run(ctx context.Context) {
	for ctx.Err() == nil {
		m.Tick()
		m.clock.Delay(2)
	}
}

// confirm re-reads the pin a few times to reject contact bounce and noise.
func (m *Monitor) confirm(e *entry, want bool) bool {
	for n := uint8(0); n < m.cfg.ConfirmSamples; n++ {
		m.clock.Delay(uint32(m.cfg.ConfirmDelayMs))
		if e.pin.Get() != want {
			return false
		}
	}
	return true
}

func (m *Monitor) printSnapshot(e *entry) {
	m.writeLine("pinmon: ", m.label(e), " start ", levelStr(e.level), originStr(e))
}

func (m *Monitor) printTransition(e *entry) {
	var buf [10]byte
	ts := string(conv.Utoa(buf[:], uint64(m.clock.Millis())))
	m.writeLine("[", ts, "] ", m.label(e), " -> ", levelStr(e.level), originStr(e))
}

func (m *Monitor) printSummary() {
	m.write("pinmon:")
	for i := range m.entries {
		e := &m.entries[i]
		m.write(" ", m.label(e), "=", levelStr(e.level))
	}
	m.write("\r\n")
}

func (m *Monitor) label(e *entry) string {
	return "GP" + itoa(e.spec.Pin)
}

func levelStr(level bool) string {
	if level {
		return "HIGH"
	}
	return "LOW"
}

func originStr(e *entry) string {
	if e.spec.FromLayout {
		return " (layout)"
	}
	return " (spare)"
}

func (m *Monitor) write(parts ...string) {
	for _, p := range parts {
		_, _ = m.out.Write([]byte(p))
	}
}

func (m *Monitor) writeLine(parts ...string) {
	m.write(parts...)
	m.write("\r\n")
}

func itoa(n int) string {
	var buf [12]byte
	return string(conv.Itoa(buf[:], int64(n)))
}
