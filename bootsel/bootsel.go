// Package bootsel decides when the firmware hands control to the hardware
// bootloader: once at power-up, and continuously via a key chord.
package bootsel

import (
	"keypad-go/hw"
	"keypad-go/types"
)

// RequestedAtBoot reads every button flagged BootloaderOnBoot, before any
// other initialization, and reports whether one is held. The caller must
// jump to the bootloader immediately on true so no partially initialized
// state is left behind.
func RequestedAtBoot(pins hw.PinFactory, buttons []types.ButtonBinding) bool {
	for i := range buttons {
		b := &buttons[i]
		if !b.BootloaderOnBoot {
			continue
		}
		p, ok := pins.ByNumber(b.Pin)
		if !ok {
			continue
		}
		pull := hw.PullNone
		if b.ActiveLow {
			pull = hw.PullUp
		}
		_ = p.ConfigureInput(pull)
		level := p.Get()
		if b.ActiveLow {
			level = !level
		}
		if level {
			return true
		}
	}
	return false
}

// Arbiter evaluates the live bootloader chord each tick.
type Arbiter struct {
	members []int // button indices flagged as chord members
}

func NewArbiter(buttons []types.ButtonBinding) *Arbiter {
	a := &Arbiter{}
	for i := range buttons {
		if buttons[i].BootloaderChord {
			a.members = append(a.members, i)
		}
	}
	return a
}

// ChordHeld reports whether every chord member is active at once. An empty
// member set never triggers: the vacuous AND is deliberately false, so a
// layout without a chord can never fall into the bootloader.
func (a *Arbiter) ChordHeld(active func(i int) bool) bool {
	if len(a.members) == 0 {
		return false
	}
	for _, i := range a.members {
		if !active(i) {
			return false
		}
	}
	return true
}
