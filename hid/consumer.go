package hid

import "keypad-go/hw"

// ConsumerQueue serializes volume usage codes over a transport that can hold
// only one consumer report in flight. Triggers accumulate into a signed
// pending counter (positive = volume up); Service drains it one
// (usage, neutral) pair at a time, retrying on back-pressure. awaitingNeutral
// true means exactly one non-neutral code was sent and not yet neutralized;
// that is the invariant everything here exists to protect.
type ConsumerQueue struct {
	pending         int
	awaitingNeutral bool
}

// Bump adds delta detents of volume change to the backlog.
func (q *ConsumerQueue) Bump(delta int) { q.pending += delta }

// OweNeutral hands the queue responsibility for neutralizing a usage code
// that was sent outside the queue (a direct fire-and-forget action whose
// immediate neutral hit a busy transport).
func (q *ConsumerQueue) OweNeutral() { q.awaitingNeutral = true }

// AwaitingNeutral reports whether a non-neutral code is still in flight.
func (q *ConsumerQueue) AwaitingNeutral() bool { return q.awaitingNeutral }

// Pending returns the signed backlog, for diagnostics.
func (q *ConsumerQueue) Pending() int { return q.pending }

// Service advances the queue by at most one transmission. A busy transport
// leaves all state untouched; the same step is retried next tick, so nothing
// is ever lost or reordered.
func (q *ConsumerQueue) Service(tr hw.Transport) {
	if q.awaitingNeutral {
		if tr.TrySendConsumer(UsageNeutral) {
			q.awaitingNeutral = false
		}
		return
	}

	if q.pending == 0 {
		return
	}
	usage := UsageVolumeDecrement
	if q.pending > 0 {
		usage = UsageVolumeIncrement
	}
	if !tr.TrySendConsumer(usage) {
		return
	}
	if q.pending > 0 {
		q.pending--
	} else {
		q.pending++
	}
	q.awaitingNeutral = true
}
