// Package hw defines the hardware capability interfaces the engine runs
// against. Platform packages provide the real implementations; tests and the
// simulator provide fakes.
package hw

// ---------------- GPIO abstractions ----------------

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOPin is the input-side pin view the scanner needs.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	Get() bool
	Number() int
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// ---------------- USB HID transport ----------------

type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
)

// Transport is the low-level HID boundary. All calls are non-blocking;
// TrySendConsumer reports whether the transmit slot was free. Usage 0 is the
// neutral consumer code.
type Transport interface {
	PressKey(code uint16)
	ReleaseKeys()

	TrySendConsumer(usage uint16) bool

	MouseMove(dx, dy int8)
	MouseClick(btn MouseButton)
	MouseScroll(ticks int8)
}

// ---------------- Pixel driver ----------------

// Pixels drives the per-key LED strip. SetRGB stages a color; nothing is
// visible until Flush. Indexing is physical strip order.
type Pixels interface {
	Count() int
	SetRGB(i int, r, g, b uint8)
	Flush()
	Clear()
}

// ---------------- Platform services ----------------

// Clock provides the monotonic millisecond counter and the blocking delay
// primitive. Injectable so tests can run sequences without wall-clock waits.
type Clock interface {
	Millis() uint32
	Delay(ms uint32)
}

// Boot jumps to the hardware bootloader. Enter does not return on hardware;
// fakes record the call instead.
type Boot interface {
	Enter()
}

// ---------------- UART (pin monitor output) ----------------

type UARTPort interface {
	WriteByte(b byte) error
	Write(p []byte) (int, error)
}
