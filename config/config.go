// Package config holds the compiled board configuration. In production this
// file is regenerated by the layout flasher from the user's layout; the
// checked-in tables describe the six-button, one-encoder reference board.
package config

import (
	"keypad-go/platform"
	"keypad-go/types"
)

// DebugPinMonitor selects the bring-up pin monitor instead of the normal
// engine. Flip at build time when validating a new board revision.
const DebugPinMonitor = false

// SparePins are unwired pads watched by the pin monitor in addition to the
// layout pins.
var SparePins = []int{10, 11, 12}

// Pixels is the LED strip wiring.
var Pixels = platform.PixelConfig{Pin: 16, Count: 6}

// DebugUART is the bring-up serial port.
var DebugUART = platform.DebugUARTConfig{ID: "uart0", TX: 0, RX: 1, Baud: 115200}

func key(code uint16) types.HidBinding {
	return types.HidBinding{Steps: []types.HidStep{
		types.KeyStep{Keycode: code},
	}}
}

func action(a types.Action) types.HidBinding {
	return types.HidBinding{Steps: []types.HidStep{
		types.FunctionStep{Action: a},
	}}
}

// Layout is the compiled binding and lighting table.
var Layout = types.Layout{
	Buttons: []types.ButtonBinding{
		{Pin: 1, ActiveLow: true, LedIndex: 0, Binding: key(0x1E)}, // "1"
		{Pin: 2, ActiveLow: true, LedIndex: 1, Binding: key(0x1F)}, // "2"
		{Pin: 3, ActiveLow: true, LedIndex: 2, Binding: key(0x20)}, // "3"
		{
			Pin: 4, LedIndex: 3,
			BootloaderOnBoot: true, BootloaderChord: true,
			Binding: action(types.ActionVolumeDown),
		},
		{
			Pin: 5, LedIndex: 4,
			BootloaderChord: true,
			Binding: types.HidBinding{Steps: []types.HidStep{
				types.KeyStep{Keycode: 0x17, Modifiers: types.ModShift, GapMs: 1}, // "T"
				types.KeyStep{Keycode: 0x04, GapMs: 1},                            // "a"
				types.KeyStep{Keycode: 0x05, GapMs: 1},                            // "b"
			}},
		},
		{
			Pin: 6, ActiveLow: true, LedIndex: types.NoLed,
			BootloaderOnBoot: true,
			Binding:          action(types.ActionVolumeUp),
		},
	},
	Encoders: []types.EncoderBinding{
		{
			PinA:             20,
			PinB:             21,
			Clockwise:        action(types.ActionVolumeUp),
			CounterClockwise: action(types.ActionVolumeDown),
		},
	},
	Leds: &types.LedConfig{
		PassiveModes: []types.LedPassiveMode{
			types.LedPassiveRainbow,
			types.LedPassiveRainbow,
			types.LedPassiveRainbow,
			types.LedPassiveBreathing,
			types.LedPassiveStatic,
			types.LedPassiveOff,
		},
		PassiveColors: []types.RGB{
			{}, {}, {},
			{R: 0, G: 0, B: 252},
			{R: 252, G: 128, B: 0},
			{},
		},
		ActiveModes: []types.LedActiveMode{
			types.LedActiveSolid,
			types.LedActiveSolid,
			types.LedActiveSolid,
			types.LedActiveSolid,
			types.LedActiveNothing,
			types.LedActiveOff,
		},
		ActiveColors: []types.RGB{
			{R: 252, G: 252, B: 252},
			{R: 252, G: 252, B: 252},
			{R: 252, G: 252, B: 252},
			{R: 0, G: 252, B: 0},
			{}, {},
		},
		Count:               6,
		BrightnessPercent:   40,
		BreathingMinPercent: 10,
	},
}
