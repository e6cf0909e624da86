package types

// Compiled table capacities. State arrays are sized from the declared table
// counts at startup and never exceed these.
const (
	MaxButtons  = 32
	MaxEncoders = 8
)

// NoLed marks a button with no LED mapping.
const NoLed int8 = -1

// ButtonBinding is one compiled row of the button table.
type ButtonBinding struct {
	Pin       int
	ActiveLow bool
	LedIndex  int8 // NoLed when no LED mapping

	BootloaderOnBoot bool // checked during power-on to jump directly
	BootloaderChord  bool // contributes to the in-field boot chord

	Binding HidBinding
}

// EncoderBinding is one compiled row of the encoder table. An encoder's
// press switch, when present, is compiled as an ordinary ButtonBinding row.
type EncoderBinding struct {
	PinA int
	PinB int

	Clockwise        HidBinding
	CounterClockwise HidBinding
}

// Layout is the full compiled configuration this engine consumes. It is
// produced by the external layout compiler; the engine trusts its shape and
// only defends against out-of-range indices.
type Layout struct {
	Buttons  []ButtonBinding
	Encoders []EncoderBinding
	Leds     *LedConfig // nil when the board has no lighting
}
