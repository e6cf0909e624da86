//go:build !rp2040 && !rp2350

// Command simulate replays a scripted input timeline against the engine on a
// fully simulated board, logging every HID report the firmware would have
// sent. Useful for validating a compiled layout before flashing it.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"keypad-go/bus"
	"keypad-go/config"
	"keypad-go/hid"
	"keypad-go/input"
	"keypad-go/ledfx"
	"keypad-go/platform"
	"keypad-go/sched"
	"keypad-go/types"
)

func main() {
	var scenarioPath string
	flag.StringVar(&scenarioPath, "scenario", "scenario.yaml", "Path to scenario file")
	flag.StringVar(&scenarioPath, "s", "scenario.yaml", "Path to scenario file (shorthand)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	setupLogging(*verbose)

	sc, err := LoadScenario(scenarioPath)
	if err != nil {
		log.Fatal().Err(err).Str("scenario", scenarioPath).Msg("Failed to load scenario")
	}

	board := platform.Setup(config.Pixels, config.DebugUART)
	pins := board.Pins.(*platform.SimPinFactory)
	clock := board.Clock.(*platform.SimClock)
	tr := board.HID.(*platform.SimTransport)
	boot := board.Boot.(*platform.SimBoot)

	scanner := input.New(board.Pins, &config.Layout)
	engine := hid.New(board.HID, board.Clock)
	leds := ledfx.New(config.Layout.Leds, board.Pixels, board.Clock)
	s := sched.New(&config.Layout, scanner, engine, leds, board.Boot, board.Clock)

	// Engine activity goes over the trace bus; the monitor goroutine turns
	// it back into log lines, same as an attached debug client would.
	b := bus.NewBus(64)
	s.SetTracer(&busTracer{conn: b.NewConnection("sim")})
	mon := b.NewConnection("monitor")
	traceSub := mon.Subscribe(bus.T("trace", bus.WildRest))
	done := make(chan struct{})
	go runMonitor(traceSub, done)

	log.Info().
		Str("scenario", scenarioPath).
		Uint32("duration_ms", sc.DurationMs).
		Int("events", len(sc.Events)).
		Msg("Starting simulation")

	s.Start()
	drainOps(tr, clock)

	drv := newDriver(pins, sc)
	for clock.Millis() < sc.DurationMs {
		drv.apply(clock.Millis())
		if !s.Tick() {
			break
		}
		drainOps(tr, clock)
	}

	mon.Disconnect()
	<-done

	if boot.Entered {
		log.Info().Uint32("at_ms", clock.Millis()).Msg("Bootloader entered")
	}
	log.Info().Uint32("elapsed_ms", clock.Millis()).Msg("Simulation complete")
}

// drainOps logs the transport traffic of the last tick.
func drainOps(tr *platform.SimTransport, clock *platform.SimClock) {
	for _, op := range tr.Drain() {
		ev := log.Info().Uint32("at_ms", clock.Millis()).Str("op", op.Kind)
		switch op.Kind {
		case "key", "consumer":
			ev = ev.Str("code", "0x"+strconv.FormatUint(uint64(op.Code), 16))
		case "move":
			ev = ev.Int8("dx", op.DX).Int8("dy", op.DY)
		case "click":
			ev = ev.Uint8("button", uint8(op.Btn))
		case "scroll":
			ev = ev.Int8("ticks", op.Ticks)
		}
		ev.Msg("HID")
	}
}

// ---------------- Input driver ----------------

// Clockwise quadrature sample cycle (A<<1 | B).
var cwSeq = [4]uint8{0b00, 0b10, 0b11, 0b01}

type encoderDrive struct {
	phase   int
	pending int // signed outstanding quadrature counts
}

type driver struct {
	pins     *platform.SimPinFactory
	events   []Event
	next     int
	encoders []encoderDrive
}

func newDriver(pins *platform.SimPinFactory, sc *Scenario) *driver {
	d := &driver{
		pins:     pins,
		events:   sc.Events,
		encoders: make([]encoderDrive, len(config.Layout.Encoders)),
	}
	// Idle encoder lines sit at the first cycle sample.
	for i := range config.Layout.Encoders {
		d.setEncoderLines(i, cwSeq[0])
	}
	return d
}

// apply releases due events and advances each rotating encoder by one
// quadrature state per tick.
func (d *driver) apply(nowMs uint32) {
	for d.next < len(d.events) && d.events[d.next].AtMs <= nowMs {
		d.start(d.events[d.next])
		d.next++
	}

	for i := range d.encoders {
		e := &d.encoders[i]
		switch {
		case e.pending > 0:
			e.phase = (e.phase + 1) & 3
			e.pending--
		case e.pending < 0:
			e.phase = (e.phase + 3) & 3
			e.pending++
		default:
			continue
		}
		d.setEncoderLines(i, cwSeq[e.phase])
	}
}

func (d *driver) start(ev Event) {
	switch {
	case ev.Button != nil:
		i := *ev.Button
		if i < 0 || i >= len(config.Layout.Buttons) {
			log.Warn().Int("button", i).Msg("Scenario references unknown button")
			return
		}
		b := config.Layout.Buttons[i]
		down := ev.State != "up"
		// Electrical level follows the configured polarity.
		level := down != b.ActiveLow
		if p, ok := d.pins.Get(b.Pin); ok {
			p.SetLevel(level)
		}
	case ev.Encoder != nil:
		i := *ev.Encoder
		if i < 0 || i >= len(d.encoders) {
			log.Warn().Int("encoder", i).Msg("Scenario references unknown encoder")
			return
		}
		d.encoders[i].pending += ev.Counts
	}
}

func (d *driver) setEncoderLines(i int, sample uint8) {
	enc := config.Layout.Encoders[i]
	if p, ok := d.pins.Get(enc.PinA); ok {
		p.SetLevel(sample&0b10 != 0)
	}
	if p, ok := d.pins.Get(enc.PinB); ok {
		p.SetLevel(sample&0b01 != 0)
	}
}

// ---------------- Trace bridge ----------------

type busTracer struct{ conn *bus.Connection }

func (t *busTracer) ButtonEvent(index int, mode types.TriggerMode) {
	topic := bus.T("trace", "button", strconv.Itoa(index))
	t.conn.Publish(t.conn.NewMessage(topic, mode, false))
}

func (t *busTracer) EncoderEvent(index int, clockwise bool) {
	topic := bus.T("trace", "encoder", strconv.Itoa(index))
	t.conn.Publish(t.conn.NewMessage(topic, clockwise, false))
}

func (t *busTracer) BootChord() {
	t.conn.Publish(t.conn.NewMessage(bus.T("trace", "boot"), nil, false))
}

func runMonitor(sub *bus.Subscription, done chan<- struct{}) {
	defer close(done)
	for msg := range sub.Channel() {
		log.Debug().
			Strs("topic", msg.Topic).
			Interface("payload", msg.Payload).
			Msg("Trace")
	}
}

func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000",
	})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
