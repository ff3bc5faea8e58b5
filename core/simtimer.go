package core

import "sync/atomic"

// SimTimer is a software model of a compare-timer peripheral: a wrapping
// counter, one compare register per channel and per-channel interrupt
// enable and pending bits. It drives the time driver's handlers the way
// real compare-match interrupts would, which makes the driver testable on
// the host and lets tooling replay recorded traces.
//
// Hardware semantics modeled here: a compare fires when the counter
// counts up to the compare value. A compare equal to the current counter
// does not fire until the counter comes all the way around, which is
// exactly the hazard the driver's catch-up loop exists for.
type SimTimer struct {
	counter uint32 // accessed atomically; foreground Now() races Advance
	mask    uint32
	period  uint64

	compare [MaxChannels]uint32
	enabled [MaxChannels]bool
	pending [MaxChannels]bool

	// Handler receives delivered interrupts, normally
	// (*TimeDriver).HandleInterrupt.
	Handler func(ch Channel)

	held bool // interrupts latched but not delivered, see Hold
}

// NewSimTimer returns a simulated timer for the given counter width.
func NewSimTimer(counterBits uint8) *SimTimer {
	return &SimTimer{
		mask:   uint32(1)<<counterBits - 1,
		period: uint64(1) << counterBits,
	}
}

// ReadCounter returns the current native counter value
func (s *SimTimer) ReadCounter() uint32 {
	return atomic.LoadUint32(&s.counter)
}

// SetCompare programs a channel's compare register
func (s *SimTimer) SetCompare(ch Channel, value uint32) {
	s.compare[ch] = value & s.mask
}

// EnableInterrupt unmasks a channel's compare-match interrupt
func (s *SimTimer) EnableInterrupt(ch Channel) {
	s.enabled[ch] = true
}

// DisableInterrupt masks a channel's compare-match interrupt
func (s *SimTimer) DisableInterrupt(ch Channel) {
	s.enabled[ch] = false
}

// ClearPending acknowledges a channel's compare-match event
func (s *SimTimer) ClearPending(ch Channel) {
	s.pending[ch] = false
}

// Hold latches compare matches without delivering them, simulating a
// stretch of execution with interrupts masked.
func (s *SimTimer) Hold() {
	s.held = true
}

// Release delivers every latched compare match and resumes normal
// delivery. Channels are delivered in ascending order.
func (s *SimTimer) Release() {
	s.held = false
	for ch := Channel(0); ch < MaxChannels; ch++ {
		if s.pending[ch] && s.enabled[ch] {
			s.deliver(ch)
		}
	}
}

// Advance moves the counter forward by n ticks, firing compare matches in
// the order the hardware would.
func (s *SimTimer) Advance(n uint64) {
	for n > 0 {
		// Distance to the nearest enabled compare.
		step := n
		for ch := Channel(0); ch < MaxChannels; ch++ {
			if !s.enabled[ch] {
				continue
			}
			delta := uint64(s.compare[ch]-s.ReadCounter()) & (s.period - 1)
			if delta == 0 {
				delta = s.period // equal compare fires a full wrap later
			}
			if delta < step {
				step = delta
			}
		}

		atomic.StoreUint32(&s.counter, (s.ReadCounter()+uint32(step))&s.mask)
		n -= step

		for ch := Channel(0); ch < MaxChannels; ch++ {
			if s.enabled[ch] && s.compare[ch] == s.ReadCounter() {
				s.pending[ch] = true
				if !s.held {
					s.deliver(ch)
				}
			}
		}
	}
}

func (s *SimTimer) deliver(ch Channel) {
	if s.Handler != nil {
		s.Handler(ch)
	}
}
