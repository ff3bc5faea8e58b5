package core

// OnChannelInterrupt services an alarm channel's compare match. Called
// from the timer ISR (or the simulated timer); pops every due alarm at
// the head of the channel's queue, fires each callback exactly once, then
// re-arms the channel for the next pending deadline.
func (d *TimeDriver) OnChannelInterrupt(ch Channel) {
	d.hw.ClearPending(ch)
	state := disableInterrupts()
	d.serviceChannel(ch)
	restoreInterrupts(state)
}

// serviceChannel is the catch-up loop. It fires all alarms whose wake
// tick has passed, even when the interrupt arrived late and several
// deadlines expired, then programs the compare register for the new head
// or disables the channel interrupt if the queue is empty.
//
// Must be called with interrupts disabled.
func (d *TimeDriver) serviceChannel(ch Channel) {
	q := &d.queues[ch]
	for {
		now := d.Now()
		for q.head != nil && q.head.WakeTick <= now {
			a := q.head
			q.head = a.next
			a.next = nil
			q.depth--
			a.state = alarmFired
			a.Callback()
			now = d.Now()
		}

		if q.head == nil {
			d.hw.DisableInterrupt(ch)
			return
		}

		// A deadline further out than half the native period cannot be
		// expressed in the compare register without ambiguity; arm an
		// intermediate compare and re-evaluate when it fires.
		target := q.head.WakeTick
		cmp := target
		if target-now > d.halfPeriod {
			cmp = now + d.halfPeriod
		}
		d.hw.SetCompare(ch, uint32(cmp)&d.counterMask)
		d.hw.EnableInterrupt(ch)

		if d.Now() < target {
			return
		}
		// The deadline passed while reprogramming and the compare may
		// never match; go around and fire it from software.
	}
}
