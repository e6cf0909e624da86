// Package ledfx renders per-key lighting: a passive ambient layer
// (off/rainbow/static/breathing) overridden per key by an active layer while
// the key is held. All pixel writes for a tick land before the single flush,
// so a viewer never sees a partial frame.
package ledfx

import (
	"keypad-go/hw"
	"keypad-go/types"
	"keypad-go/x/mathx"
)

const (
	defaultRainbowStepMs = 20
	defaultBreathStepMs  = 20

	// Catch-up bounds keep a stalled tick (a long macro) from spinning the
	// animation counters for milliseconds on end.
	maxRainbowCatchUp = 64
	maxBreathCatchUp  = 200

	// Per-index hue offset so adjacent LEDs cycle visibly out of phase.
	hueOffsetPerLed = 8

	// Wheel position rendered on every LED as the bootloader acknowledgment.
	bootAckHue = 128 // blue
)

type Controller struct {
	cfg   *types.LedConfig
	px    hw.Pixels
	clock hw.Clock

	count   int
	pressed []bool

	phase        uint8 // shared rainbow wheel position
	lastRainbow  uint32
	lastBreath   uint32
	breathPct    uint8
	breathFading bool
}

// New sizes the controller from the compiled lighting table, bounded by the
// physical strip length. A nil table means the board has no lighting; New
// returns nil and the scheduler skips every lighting call.
func New(cfg *types.LedConfig, px hw.Pixels, clock hw.Clock) *Controller {
	if cfg == nil {
		return nil
	}
	count := mathx.Min(int(cfg.Count), px.Count())
	now := clock.Millis()
	return &Controller{
		cfg:          cfg,
		px:           px,
		clock:        clock,
		count:        count,
		pressed:      make([]bool, count),
		lastRainbow:  now,
		lastBreath:   now,
		breathPct:    100,
		breathFading: true,
	}
}

// SetKeyPressed records the active-layer override for one LED. Out-of-range
// indices are ignored.
func (c *Controller) SetKeyPressed(led int, pressed bool) {
	if led < 0 || led >= c.count {
		return
	}
	c.pressed[led] = pressed
}

// Update advances the shared animation counters and renders one full frame.
func (c *Controller) Update() {
	hasRainbow, hasBreathing := c.passiveModesInUse()
	now := c.clock.Millis()
	if hasRainbow {
		c.stepRainbow(now)
	}
	if hasBreathing {
		c.stepBreathing(now)
	}

	for led := 0; led < c.count; led++ {
		c.render(led)
	}
	c.px.Flush()
}

// BootAck paints the whole strip blue and flushes once, acknowledging an
// imminent bootloader jump.
func (c *Controller) BootAck() {
	color := HueToRGB(bootAckHue)
	for led := 0; led < c.count; led++ {
		c.px.SetRGB(c.physical(led), color.R, color.G, color.B)
	}
	c.px.Flush()
}

// Phase returns the shared rainbow wheel position.
func (c *Controller) Phase() uint8 { return c.phase }

func (c *Controller) passiveModesInUse() (rainbow, breathing bool) {
	for led := 0; led < c.count; led++ {
		switch c.passiveMode(led) {
		case types.LedPassiveRainbow:
			rainbow = true
		case types.LedPassiveBreathing:
			breathing = true
		}
		if rainbow && breathing {
			return
		}
	}
	return
}

func (c *Controller) stepRainbow(now uint32) {
	stepMs := uint32(c.cfg.RainbowStepMs)
	if stepMs == 0 {
		stepMs = defaultRainbowStepMs
	}
	elapsed := now - c.lastRainbow
	steps := mathx.Min(elapsed/stepMs, maxRainbowCatchUp)
	if steps == 0 {
		return
	}
	c.lastRainbow += steps * stepMs
	c.phase = uint8((uint32(c.phase) + steps) % HueRange)
}

func (c *Controller) stepBreathing(now uint32) {
	stepMs := uint32(c.cfg.BreathingStepMs)
	if stepMs == 0 {
		stepMs = defaultBreathStepMs
	}
	elapsed := now - c.lastBreath
	steps := mathx.Min(elapsed/stepMs, maxBreathCatchUp)
	if steps == 0 {
		return
	}
	c.lastBreath += steps * stepMs

	minPct := mathx.Min(c.cfg.BreathingMinPercent, 100)
	for ; steps > 0; steps-- {
		if c.breathFading {
			if c.breathPct > minPct {
				c.breathPct--
			} else {
				c.breathFading = false
			}
		} else {
			if c.breathPct < 100 {
				c.breathPct++
			} else {
				c.breathFading = true
			}
		}
	}
}

func (c *Controller) render(led int) {
	phys := c.physical(led)

	if c.pressed[led] {
		switch c.activeMode(led) {
		case types.LedActiveSolid:
			c.write(phys, c.color(c.cfg.ActiveColors, led), 100)
			return
		case types.LedActiveOff:
			c.px.SetRGB(phys, 0, 0, 0)
			return
		case types.LedActiveNothing:
			// fall through to the passive layer
		}
	}

	switch c.passiveMode(led) {
	case types.LedPassiveStatic:
		c.write(phys, c.color(c.cfg.PassiveColors, led), 100)
	case types.LedPassiveBreathing:
		c.write(phys, c.color(c.cfg.PassiveColors, led), c.breathPct)
	case types.LedPassiveRainbow:
		hue := (uint32(c.phase) + uint32(led)*hueOffsetPerLed) % HueRange
		c.write(phys, HueToRGB(uint8(hue)), 100)
	default:
		c.px.SetRGB(phys, 0, 0, 0)
	}
}

// write stages a color scaled by the layer percent and the global
// brightness.
func (c *Controller) write(phys int, col types.RGB, percent uint8) {
	global := mathx.Min(c.cfg.BrightnessPercent, 100)
	effective := uint16(percent) * uint16(global) / 100
	c.px.SetRGB(phys,
		scale(col.R, effective),
		scale(col.G, effective),
		scale(col.B, effective),
	)
}

func scale(v uint8, percent uint16) uint8 {
	return uint8(uint16(v) * percent / 100)
}

// physical maps logical LED order onto the strip, flipping when the strip is
// wired in reverse.
func (c *Controller) physical(logical int) int {
	if c.cfg.Reversed {
		return c.count - 1 - logical
	}
	return logical
}

func (c *Controller) passiveMode(led int) types.LedPassiveMode {
	if led >= len(c.cfg.PassiveModes) {
		return types.LedPassiveOff
	}
	return c.cfg.PassiveModes[led]
}

func (c *Controller) activeMode(led int) types.LedActiveMode {
	if led >= len(c.cfg.ActiveModes) {
		return types.LedActiveNothing
	}
	return c.cfg.ActiveModes[led]
}

func (c *Controller) color(table []types.RGB, led int) types.RGB {
	if led >= len(table) {
		return types.RGB{}
	}
	return table[led]
}
