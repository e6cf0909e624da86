package input

// DetentCounts is how many valid quadrature counts make one mechanical
// click. Four suits the common one-detent-per-cycle encoders; validate
// against the target part before changing it.
const DetentCounts = 4

// quadDelta maps (prev sample << 2 | new sample) to a signed count. Invalid
// transitions (contact bounce skipping a state) map to zero, which is the
// whole debounce strategy: bounce cannot fake a full detent.
var quadDelta = [16]int8{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

func (e *encoderState) sample() uint8 {
	var v uint8
	if e.pinA.Get() {
		v |= 1 << 1
	}
	if e.pinB.Get() {
		v |= 1
	}
	return v
}

// advance folds the current sample into the position counter and drains any
// whole detents into Click events. reported moves by whole detents only, so
// fractional over-rotation carries into the next click.
func (e *encoderState) advance(index int, sink Sink) {
	cur := e.sample()
	e.position += int32(quadDelta[e.prev<<2|cur])
	e.prev = cur

	for e.position-e.reported >= DetentCounts {
		e.reported += DetentCounts
		sink.Encoder(index, true)
	}
	for e.position-e.reported <= -DetentCounts {
		e.reported -= DetentCounts
		sink.Encoder(index, false)
	}
}
