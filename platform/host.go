//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"keypad-go/hw"
)

// Setup builds a fully simulated board. The simulator drives SimPin levels
// and the virtual clock; the transport and pixels record what the engine
// sends so behavior can be asserted or logged.
func Setup(pix PixelConfig, _ DebugUARTConfig) Board {
	return Board{
		Pins:   NewSimPinFactory(),
		HID:    &SimTransport{},
		Pixels: NewSimPixels(pix.Count),
		Clock:  &SimClock{},
		Boot:   &SimBoot{},
		Debug:  &SimUART{},
	}
}

// ---------------- GPIO (sim) ----------------

// SimPin is a settable input pin.
type SimPin struct {
	mu     sync.RWMutex
	number int
	level  bool
	pull   hw.Pull
}

func (p *SimPin) ConfigureInput(pull hw.Pull) error {
	p.mu.Lock()
	p.pull = pull
	// An open input with a pullup idles high.
	p.level = pull == hw.PullUp
	p.mu.Unlock()
	return nil
}

func (p *SimPin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *SimPin) Number() int { return p.number }

// SetLevel drives the simulated input.
func (p *SimPin) SetLevel(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

// SimPinFactory hands out stable *SimPin instances per number.
type SimPinFactory struct {
	mu   sync.Mutex
	pins map[int]*SimPin
}

func NewSimPinFactory() *SimPinFactory {
	return &SimPinFactory{pins: make(map[int]*SimPin)}
}

func (f *SimPinFactory) ByNumber(n int) (hw.GPIOPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	if !ok {
		p = &SimPin{number: n}
		f.pins[n] = p
	}
	return p, true
}

// Get exposes the underlying *SimPin so callers can drive levels.
func (f *SimPinFactory) Get(n int) (*SimPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	return p, ok
}

// ---------------- HID transport (sim) ----------------

// HidOp is one recorded transport call.
type HidOp struct {
	Kind  string // "key", "release", "consumer", "move", "click", "scroll"
	Code  uint16
	DX    int8
	DY    int8
	Btn   hw.MouseButton
	Ticks int8
}

// SimTransport records everything the engine sends. ConsumerBusy simulates
// a full transmit slot for as many sends as its counter holds.
type SimTransport struct {
	Ops          []HidOp
	ConsumerBusy int
}

func (t *SimTransport) PressKey(code uint16) {
	t.Ops = append(t.Ops, HidOp{Kind: "key", Code: code})
}

func (t *SimTransport) ReleaseKeys() {
	t.Ops = append(t.Ops, HidOp{Kind: "release"})
}

func (t *SimTransport) TrySendConsumer(usage uint16) bool {
	if t.ConsumerBusy > 0 {
		t.ConsumerBusy--
		return false
	}
	t.Ops = append(t.Ops, HidOp{Kind: "consumer", Code: usage})
	return true
}

func (t *SimTransport) MouseMove(dx, dy int8) {
	t.Ops = append(t.Ops, HidOp{Kind: "move", DX: dx, DY: dy})
}

func (t *SimTransport) MouseClick(btn hw.MouseButton) {
	t.Ops = append(t.Ops, HidOp{Kind: "click", Btn: btn})
}

func (t *SimTransport) MouseScroll(ticks int8) {
	t.Ops = append(t.Ops, HidOp{Kind: "scroll", Ticks: ticks})
}

// Drain returns the recorded ops and clears the log.
func (t *SimTransport) Drain() []HidOp {
	ops := t.Ops
	t.Ops = nil
	return ops
}

// ---------------- Pixels (sim) ----------------

type SimPixels struct {
	staged  [][3]uint8
	Shown   [][3]uint8
	Flushes int
}

func NewSimPixels(count int) *SimPixels {
	return &SimPixels{
		staged: make([][3]uint8, count),
		Shown:  make([][3]uint8, count),
	}
}

func (p *SimPixels) Count() int { return len(p.staged) }

func (p *SimPixels) SetRGB(i int, r, g, b uint8) {
	if i < 0 || i >= len(p.staged) {
		return
	}
	p.staged[i] = [3]uint8{r, g, b}
}

func (p *SimPixels) Flush() {
	copy(p.Shown, p.staged)
	p.Flushes++
}

func (p *SimPixels) Clear() {
	for i := range p.staged {
		p.staged[i] = [3]uint8{}
	}
	p.Flush()
}

// ---------------- Clock / boot / UART (sim) ----------------

// SimClock is a virtual millisecond clock. Delay advances it, so scheduled
// behavior runs at full speed while still observing elapsed time.
type SimClock struct {
	mu  sync.Mutex
	now uint32
}

func (c *SimClock) Millis() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Delay(ms uint32) {
	c.mu.Lock()
	c.now += ms
	c.mu.Unlock()
}

// Advance moves the clock without a delay call.
func (c *SimClock) Advance(ms uint32) { c.Delay(ms) }

// SimBoot records bootloader entry instead of resetting anything.
type SimBoot struct{ Entered bool }

func (b *SimBoot) Enter() { b.Entered = true }

// SimUART accumulates written bytes.
type SimUART struct{ Buf []byte }

func (u *SimUART) WriteByte(b byte) error {
	u.Buf = append(u.Buf, b)
	return nil
}

func (u *SimUART) Write(p []byte) (int, error) {
	u.Buf = append(u.Buf, p...)
	return len(p), nil
}
