package main

import (
	"context"

	"keypad-go/bootsel"
	"keypad-go/config"
	"keypad-go/hid"
	"keypad-go/input"
	"keypad-go/ledfx"
	"keypad-go/pinmon"
	"keypad-go/platform"
	"keypad-go/sched"
)

func main() {
	board := platform.Setup(config.Pixels, config.DebugUART)

	if config.DebugPinMonitor {
		reserved := []int{config.DebugUART.TX, config.DebugUART.RX}
		specs := pinmon.Collect(&config.Layout, config.SparePins, reserved)
		mon := pinmon.New(board.Debug, board.Pins, board.Clock, specs, pinmon.Config{})
		mon.Run(context.Background())
		return
	}

	// Power-on shortcut: a flagged button held at reset jumps straight to
	// the bootloader before anything else initializes.
	if bootsel.RequestedAtBoot(board.Pins, config.Layout.Buttons) {
		board.Boot.Enter()
		return
	}

	scanner := input.New(board.Pins, &config.Layout)
	engine := hid.New(board.HID, board.Clock)
	leds := ledfx.New(config.Layout.Leds, board.Pixels, board.Clock)

	s := sched.New(&config.Layout, scanner, engine, leds, board.Boot, board.Clock)
	s.Run(context.Background())
}
