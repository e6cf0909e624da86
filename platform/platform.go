// Package platform assembles the hardware capabilities the engine runs on.
// Setup returns the board for the active build: real RP2 peripherals under
// the rp2040/rp2350 tags, simulated ones everywhere else.
package platform

import "keypad-go/hw"

// Board bundles every capability the firmware needs.
type Board struct {
	Pins   hw.PinFactory
	HID    hw.Transport
	Pixels hw.Pixels
	Clock  hw.Clock
	Boot   hw.Boot
	Debug  hw.UARTPort
}

// PixelConfig selects the LED strip data pin and length.
type PixelConfig struct {
	Pin   int
	Count int
}

// DebugUARTConfig selects the bring-up UART pins and baud rate.
type DebugUARTConfig struct {
	ID   string // "uart0" or "uart1"
	TX   int
	RX   int
	Baud uint32
}
