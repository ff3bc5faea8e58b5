package core

import (
	"fmt"
	"sync/atomic"
)

// TimeDriver extends a narrow wrapping hardware counter into a 64-bit
// monotonic tick count and multiplexes pending alarms onto the timer's
// compare channels.
//
// The extension works by counting half-wrap periods rather than full
// wraps. The reserved compare channel fires twice per native wrap, once
// at the counter midpoint and once at the wrap to zero, and each firing
// increments the period word. When the period is even the counter is in
// the lower half of its range, when odd it is in the upper half. Now()
// reads the period first and the counter second; a counter value whose
// half does not match the period parity can only mean a period boundary
// fired between the two reads, and the XOR in calcNow assigns the counter
// to the adjacent period. This makes the read sequence race-free against
// the period interrupt without a retry loop.
//
// The period word is 32 bits. At 32768Hz with a 24-bit counter it wraps
// after roughly 34000 years of uptime.
type TimeDriver struct {
	hw  TimerDriver
	cfg Config

	period uint32 // half-wrap periods since init, written only by the period interrupt

	counterMask uint32 // low CounterBits set
	halfShift   uint8  // CounterBits - 1
	halfPeriod  uint64 // ticks per period (half the native wrap)

	queues [MaxChannels]alarmQueue
	nextCh Channel // round-robin cursor over alarm channels
}

// periodChannel is the compare channel reserved for period tracking.
const periodChannel Channel = 0

// InitTimeDriver validates the configuration, arms the period-tracking
// channel and returns a running driver. The hardware counter must already
// be cleared and counting; the tick count starts at zero.
func InitTimeDriver(hw TimerDriver, cfg Config) (*TimeDriver, error) {
	if cfg.CounterBits < 8 || cfg.CounterBits > 32 {
		return nil, fmt.Errorf("counter width %d out of range (8..32 bits)", cfg.CounterBits)
	}
	if cfg.TickHz == 0 {
		return nil, fmt.Errorf("tick frequency must be non-zero")
	}
	if cfg.NumChannels < 2 || cfg.NumChannels > MaxChannels {
		return nil, fmt.Errorf("need 2..%d compare channels, got %d", MaxChannels, cfg.NumChannels)
	}

	d := &TimeDriver{
		hw:          hw,
		cfg:         cfg,
		counterMask: uint32(1)<<cfg.CounterBits - 1,
		halfShift:   cfg.CounterBits - 1,
		halfPeriod:  uint64(1) << (cfg.CounterBits - 1),
		nextCh:      1,
	}

	// First period boundary is the counter midpoint.
	hw.SetCompare(periodChannel, uint32(d.halfPeriod))
	hw.EnableInterrupt(periodChannel)
	return d, nil
}

// Config returns the configuration the driver was initialized with.
func (d *TimeDriver) Config() Config {
	return d.cfg
}

// calcNow combines the period count and a raw counter value into the
// 64-bit tick count. The XOR folds a counter read that raced a period
// boundary into the adjacent period, see the type comment.
func calcNow(period uint32, counter uint32, halfShift uint8) uint64 {
	return uint64(period)<<halfShift + uint64(counter^((period&1)<<halfShift))
}

// Now returns the number of ticks since driver initialization. Monotonic
// non-decreasing, safe from foreground and interrupt context.
func (d *TimeDriver) Now() uint64 {
	// period MUST be read before the counter, see the type comment.
	period := atomic.LoadUint32(&d.period)
	counter := d.hw.ReadCounter() & d.counterMask
	return calcNow(period, counter, d.halfShift)
}

// OnPeriodInterrupt services the reserved channel's compare match. Called
// from the timer ISR (or the simulated timer) when the counter crosses
// the midpoint or wraps to zero.
func (d *TimeDriver) OnPeriodInterrupt() {
	d.hw.ClearPending(periodChannel)
	period := atomic.LoadUint32(&d.period) + 1
	atomic.StoreUint32(&d.period, period)

	// Re-arm for the opposite boundary: after the midpoint the next
	// boundary is the wrap to zero, and vice versa.
	if period&1 != 0 {
		d.hw.SetCompare(periodChannel, 0)
	} else {
		d.hw.SetCompare(periodChannel, uint32(d.halfPeriod))
	}
}

// HandleInterrupt routes a compare-match interrupt to the period tracker
// or the alarm dispatcher. Target ISRs call this with the channel whose
// event fired.
func (d *TimeDriver) HandleInterrupt(ch Channel) {
	if ch == periodChannel {
		d.OnPeriodInterrupt()
		return
	}
	d.OnChannelInterrupt(ch)
}
