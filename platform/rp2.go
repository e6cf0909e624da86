//go:build rp2040 || rp2350

package platform

import (
	"image/color"
	"machine"
	tgk "machine/usb/hid/keyboard"
	tgm "machine/usb/hid/mouse"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ws2812"

	"keypad-go/hw"
	"keypad-go/x/timex"
)

// Setup configures the RP2 peripherals and returns the live board.
func Setup(pix PixelConfig, dbg DebugUARTConfig) Board {
	return Board{
		Pins:   rp2PinFactory{},
		HID:    &rp2Transport{kb: tgk.Port(), m: tgm.Port()},
		Pixels: newRP2Pixels(pix),
		Clock:  rp2Clock{},
		Boot:   rp2Boot{},
		Debug:  newRP2UART(dbg),
	}
}

// ---------------- GPIO ----------------

type rp2PinFactory struct{}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (rp2PinFactory) ByNumber(n int) (hw.GPIOPin, bool) {
	if n < 0 || n > 29 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

func (r *rp2Pin) ConfigureInput(pull hw.Pull) error {
	var mode machine.PinMode
	switch pull {
	case hw.PullUp:
		mode = machine.PinInputPullup
	case hw.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) Get() bool   { return r.p.Get() }
func (r *rp2Pin) Number() int { return r.n }

// ---------------- USB HID ----------------

// The machine/usb/hid packages return unexported port types, so the
// transport holds them behind local interfaces.
type usbKeyboard interface {
	Down(c tgk.Keycode) error
	Up(c tgk.Keycode) error
	Release() error
}

type usbMouse interface {
	Move(vx, vy int)
	Click(btn tgm.Button)
	WheelUp() bool
	WheelDown() bool
}

type rp2Transport struct {
	kb usbKeyboard
	m  usbMouse

	// consumer usage currently on the wire, 0 when neutral
	media tgk.Keycode
}

func (t *rp2Transport) PressKey(code uint16) {
	_ = t.kb.Down(keycodeFor(code))
}

func (t *rp2Transport) ReleaseKeys() {
	_ = t.kb.Release()
}

// TrySendConsumer maps the usage onto the media keycode table and reports
// false when the transmit queue rejects the report.
func (t *rp2Transport) TrySendConsumer(usage uint16) bool {
	if usage == 0 {
		if t.media == 0 {
			return true
		}
		if t.kb.Up(t.media) != nil {
			return false
		}
		t.media = 0
		return true
	}
	kc, ok := mediaKeycode(usage)
	if !ok {
		// Unknown usages are dropped rather than retried forever.
		return true
	}
	if t.kb.Down(kc) != nil {
		return false
	}
	t.media = kc
	return true
}

func (t *rp2Transport) MouseMove(dx, dy int8) {
	t.m.Move(int(dx), int(dy))
}

func (t *rp2Transport) MouseClick(btn hw.MouseButton) {
	switch btn {
	case hw.MouseRight:
		t.m.Click(tgm.Right)
	default:
		t.m.Click(tgm.Left)
	}
}

// MouseScroll emits one wheel report per tick. A wheel report refused by a
// full USB endpoint is dropped rather than retried; scroll is a relative
// gesture and the next detent replaces the lost tick.
func (t *rp2Transport) MouseScroll(ticks int8) {
	for ; ticks > 0; ticks-- {
		t.m.WheelUp()
	}
	for ; ticks < 0; ticks++ {
		t.m.WheelDown()
	}
}

// keycodeFor converts a compiled HID usage to the stack's keycode encoding.
// Usages 0xE0..0xE7 are the modifier block.
func keycodeFor(code uint16) tgk.Keycode {
	if code >= 0xE0 && code <= 0xE7 {
		return tgk.Keycode(uint16(1)<<(code-0xE0)) | 0xE000
	}
	return tgk.Keycode(code) | 0xF000
}

func mediaKeycode(usage uint16) (tgk.Keycode, bool) {
	switch usage {
	case 0xE9:
		return tgk.KeyMediaVolumeInc, true
	case 0xEA:
		return tgk.KeyMediaVolumeDec, true
	case 0xE2:
		return tgk.KeyMediaMute, true
	case 0xCD:
		return tgk.KeyMediaPlayPause, true
	case 0xB5:
		return tgk.KeyMediaNextTrack, true
	case 0xB6:
		return tgk.KeyMediaPrevTrack, true
	case 0xB7:
		return tgk.KeyMediaStop, true
	}
	return 0, false
}

// ---------------- Pixels ----------------

type rp2Pixels struct {
	dev ws2812.Device
	buf []color.RGBA
}

func newRP2Pixels(cfg PixelConfig) *rp2Pixels {
	pin := machine.Pin(cfg.Pin)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &rp2Pixels{
		dev: ws2812.New(pin),
		buf: make([]color.RGBA, cfg.Count),
	}
}

func (p *rp2Pixels) Count() int { return len(p.buf) }

func (p *rp2Pixels) SetRGB(i int, r, g, b uint8) {
	if i < 0 || i >= len(p.buf) {
		return
	}
	p.buf[i] = color.RGBA{R: r, G: g, B: b, A: 255}
}

func (p *rp2Pixels) Flush() {
	_ = p.dev.WriteColors(p.buf)
}

func (p *rp2Pixels) Clear() {
	for i := range p.buf {
		p.buf[i] = color.RGBA{A: 255}
	}
	p.Flush()
}

// ---------------- Clock / boot / UART ----------------

type rp2Clock struct{}

func (rp2Clock) Millis() uint32 {
	return uint32(timex.NowMs())
}

func (rp2Clock) Delay(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

type rp2Boot struct{}

func (rp2Boot) Enter() { machine.EnterBootloader() }

type rp2UART struct{ u *uartx.UART }

func newRP2UART(cfg DebugUARTConfig) *rp2UART {
	var u *uartx.UART
	switch cfg.ID {
	case "uart1":
		u = uartx.UART1
	default:
		u = uartx.UART0
	}
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	})
	return &rp2UART{u: u}
}

func (p *rp2UART) WriteByte(b byte) error {
	_, err := p.u.Write([]byte{b})
	return err
}

func (p *rp2UART) Write(b []byte) (int, error) { return p.u.Write(b) }
