package types

// RGB is a plain color triple for LED configuration.
type RGB struct {
	R, G, B uint8
}

// LedPassiveMode selects the ambient rendering for one LED.
type LedPassiveMode uint8

const (
	LedPassiveOff LedPassiveMode = iota
	LedPassiveRainbow
	LedPassiveStatic
	LedPassiveBreathing
)

// LedActiveMode selects what replaces the ambient rendering while the
// mapped key is held. Nothing leaves the passive rendering untouched.
type LedActiveMode uint8

const (
	LedActiveOff LedActiveMode = iota
	LedActiveSolid
	LedActiveNothing
)

// LedConfig is the compiled per-LED lighting table plus global parameters.
// Per-LED slices are indexed by logical LED number and sized to Count.
type LedConfig struct {
	PassiveModes  []LedPassiveMode
	PassiveColors []RGB
	ActiveModes   []LedActiveMode
	ActiveColors  []RGB

	Count    uint8
	Reversed bool // logical order is the reverse of the physical strip

	BrightnessPercent   uint8 // global scale, 0..100
	RainbowStepMs       uint8 // 0 => controller default
	BreathingMinPercent uint8
	BreathingStepMs     uint8 // 0 => controller default
}
