package core

import "errors"

// QueueDepth is the fixed capacity of each channel's alarm queue, chosen
// at build time. Exceeding it is a reportable error, never a silent drop.
const QueueDepth = 8

var (
	// ErrQueueFull is returned by Schedule when the assigned channel's
	// queue already holds QueueDepth alarms.
	ErrQueueFull = errors.New("alarm queue full")

	// ErrAlarmPending is returned by Schedule when the alarm is already
	// queued. A node may be reused only after it fires or is cancelled.
	ErrAlarmPending = errors.New("alarm already scheduled")
)

// Alarm is one pending deadline. The registrant owns the node; the driver
// links it into a channel queue without allocating. WakeTick and Callback
// must be set before Schedule and not touched while the alarm is pending.
type Alarm struct {
	WakeTick uint64 // absolute tick at which to fire
	Callback func() // invoked exactly once, possibly from interrupt context

	next    *Alarm
	channel Channel
	state   uint8
}

// Alarm states. A handle cycles idle -> queued -> fired/cancelled; Cancel
// on anything but a queued alarm is a no-op.
const (
	alarmIdle = iota
	alarmQueued
	alarmFired
	alarmCancelled
)

// Pending reports whether the alarm is queued and not yet fired or
// cancelled.
func (a *Alarm) Pending() bool {
	return a.state == alarmQueued
}

// Channel returns the compare channel the alarm was last assigned to.
// Only meaningful after Schedule has accepted the alarm.
func (a *Alarm) Channel() Channel {
	return a.channel
}

// alarmQueue is one channel's pending alarms, a singly linked list sorted
// ascending by WakeTick, FIFO among equal ticks. The head is the alarm
// the hardware compare is armed for.
type alarmQueue struct {
	head  *Alarm
	depth uint8
}

// insert links a into the queue keeping sort order. Equal wake ticks go
// after existing entries so ties fire in registration order.
func (q *alarmQueue) insert(a *Alarm) {
	if q.head == nil || a.WakeTick < q.head.WakeTick {
		a.next = q.head
		q.head = a
	} else {
		cur := q.head
		for cur.next != nil && cur.next.WakeTick <= a.WakeTick {
			cur = cur.next
		}
		a.next = cur.next
		cur.next = a
	}
	q.depth++
}

// remove unlinks a if present and reports whether it was the head.
func (q *alarmQueue) remove(a *Alarm) (found, wasHead bool) {
	if q.head == a {
		q.head = a.next
		a.next = nil
		q.depth--
		return true, true
	}
	for cur := q.head; cur != nil; cur = cur.next {
		if cur.next == a {
			cur.next = a.next
			a.next = nil
			q.depth--
			return true, false
		}
	}
	return false, false
}

// Schedule queues the alarm to fire at a.WakeTick. Channels are assigned
// round-robin across the non-reserved compare channels; within a channel
// alarms are kept sorted by wake tick. If the deadline is already in the
// past the callback runs synchronously before Schedule returns and the
// alarm is never armed in hardware.
//
// Safe to call from foreground code and from alarm callbacks.
func (d *TimeDriver) Schedule(a *Alarm) error {
	state := disableInterrupts()

	if a.state == alarmQueued {
		restoreInterrupts(state)
		return ErrAlarmPending
	}

	if a.WakeTick <= d.Now() {
		// Programming a compare value that has already passed never
		// fires on some peripherals. Fire now instead.
		a.state = alarmFired
		restoreInterrupts(state)
		a.Callback()
		return nil
	}

	ch := d.assignChannel()
	q := &d.queues[ch]
	if q.depth >= QueueDepth {
		restoreInterrupts(state)
		return ErrQueueFull
	}

	a.channel = ch
	a.state = alarmQueued
	q.insert(a)
	if q.head == a {
		// New earliest deadline for this channel; reprogram.
		d.serviceChannel(ch)
	}

	restoreInterrupts(state)
	return nil
}

// Cancel removes the alarm from its channel's queue. If it was the
// hardware-armed entry the channel is reprogrammed for the next pending
// deadline, or its interrupt disabled if none remains. Cancelling an
// already-fired or already-cancelled alarm is a no-op.
func (d *TimeDriver) Cancel(a *Alarm) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if a.state != alarmQueued {
		return
	}
	q := &d.queues[a.channel]
	found, wasHead := q.remove(a)
	if !found {
		return
	}
	a.state = alarmCancelled
	if wasHead {
		d.serviceChannel(a.channel)
	}
}

// assignChannel picks the channel for a new alarm: plain round-robin over
// channels 1..NumChannels-1. Deterministic and O(1); load does not affect
// correctness, only worst-case queue depth.
func (d *TimeDriver) assignChannel() Channel {
	ch := d.nextCh
	d.nextCh++
	if d.nextCh >= Channel(d.cfg.NumChannels) {
		d.nextCh = 1
	}
	return ch
}
