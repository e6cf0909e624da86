// Package sched runs the fixed-order cooperative tick:
// scan → arbitrate → dispatch → consumer service → LED update → idle wait.
// One logical thread owns every piece of mutable state, so nothing locks.
package sched

import (
	"context"

	"keypad-go/bootsel"
	"keypad-go/hid"
	"keypad-go/hw"
	"keypad-go/input"
	"keypad-go/ledfx"
	"keypad-go/types"
)

// idleWaitMs bounds the tick rate so the transport is not saturated.
const idleWaitMs = 2

// Tracer observes engine activity. Host tooling bridges it onto a message
// bus; firmware builds run without one.
type Tracer interface {
	ButtonEvent(index int, mode types.TriggerMode)
	EncoderEvent(index int, clockwise bool)
	BootChord()
}

type event struct {
	encoder   bool
	index     int
	mode      types.TriggerMode
	clockwise bool
}

type Scheduler struct {
	layout *types.Layout
	scan   *input.Scanner
	arb    *bootsel.Arbiter
	eng    *hid.Engine
	leds   *ledfx.Controller // nil when the board has no lighting
	boot   hw.Boot
	clock  hw.Clock

	events []event // reused per tick
	tracer Tracer
}

func New(layout *types.Layout, scan *input.Scanner, eng *hid.Engine, leds *ledfx.Controller, boot hw.Boot, clock hw.Clock) *Scheduler {
	return &Scheduler{
		layout: layout,
		scan:   scan,
		arb:    bootsel.NewArbiter(layout.Buttons),
		eng:    eng,
		leds:   leds,
		boot:   boot,
		clock:  clock,
		events: make([]event, 0, types.MaxButtons+types.MaxEncoders),
	}
}

func (s *Scheduler) SetTracer(t Tracer) { s.tracer = t }

// Start seeds the scanner and dispatches any presses synthesized for keys
// held through power-on.
func (s *Scheduler) Start() {
	s.events = s.events[:0]
	s.scan.Seed(s)
	s.dispatch()
}

// Run loops Tick until the context ends or the chord hands control to the
// bootloader. Firmware passes a background context and never returns.
func (s *Scheduler) Run(ctx context.Context) {
	s.Start()
	for ctx.Err() == nil {
		if !s.Tick() {
			return
		}
	}
}

// Tick executes one scheduling pass. It returns false after a bootloader
// jump was requested (fake boots return from Enter; hardware does not).
func (s *Scheduler) Tick() bool {
	s.events = s.events[:0]
	s.scan.Poll(s)

	if s.arb.ChordHeld(s.scan.Active) {
		if s.leds != nil {
			s.leds.BootAck()
		}
		if s.tracer != nil {
			s.tracer.BootChord()
		}
		s.boot.Enter()
		return false
	}

	s.dispatch()
	s.eng.Service()
	if s.leds != nil {
		s.leds.Update()
	}
	s.clock.Delay(idleWaitMs)
	return true
}

// Button and Encoder implement input.Sink by buffering the tick's edge
// events; dispatch preserves the scanner's production order.
func (s *Scheduler) Button(index int, mode types.TriggerMode) {
	s.events = append(s.events, event{index: index, mode: mode})
}

func (s *Scheduler) Encoder(index int, clockwise bool) {
	s.events = append(s.events, event{encoder: true, index: index, clockwise: clockwise})
}

func (s *Scheduler) dispatch() {
	for i := range s.events {
		ev := &s.events[i]
		if ev.encoder {
			if s.tracer != nil {
				s.tracer.EncoderEvent(ev.index, ev.clockwise)
			}
			s.eng.HandleEncoder(s.layout, ev.index, ev.clockwise)
			continue
		}
		if s.tracer != nil {
			s.tracer.ButtonEvent(ev.index, ev.mode)
		}
		s.feedback(ev.index, ev.mode)
		s.eng.HandleButton(s.layout, ev.index, ev.mode)
	}
}

// feedback forwards a button edge to its mapped LED, if any.
func (s *Scheduler) feedback(index int, mode types.TriggerMode) {
	if s.leds == nil || index < 0 || index >= len(s.layout.Buttons) {
		return
	}
	led := s.layout.Buttons[index].LedIndex
	if led == types.NoLed {
		return
	}
	switch mode {
	case types.TriggerPress:
		s.leds.SetKeyPressed(int(led), true)
	case types.TriggerRelease:
		s.leds.SetKeyPressed(int(led), false)
	}
}
