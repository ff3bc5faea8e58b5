//go:build nrf52840 || nrf52833

package main

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"monotick/core"
)

// nRF52 RTC peripheral register map (nRF52833/nRF52840 product
// specification, RTC chapter). The RTC is a 24-bit counter clocked from
// the 32.768kHz LFCLK with four compare channels.
type rtcRegs struct {
	TASKS_START      volatile.Register32    // 0x000
	TASKS_STOP       volatile.Register32    // 0x004
	TASKS_CLEAR      volatile.Register32    // 0x008
	TASKS_TRIGOVRFLW volatile.Register32    // 0x00C
	_                [60]uint32
	EVENTS_TICK      volatile.Register32    // 0x100
	EVENTS_OVRFLW    volatile.Register32    // 0x104
	_                [14]uint32
	EVENTS_COMPARE   [4]volatile.Register32 // 0x140
	_                [109]uint32
	INTENSET         volatile.Register32    // 0x304
	INTENCLR         volatile.Register32    // 0x308
	_                [13]uint32
	EVTEN            volatile.Register32    // 0x340
	EVTENSET         volatile.Register32    // 0x344
	EVTENCLR         volatile.Register32    // 0x348
	_                [110]uint32
	COUNTER          volatile.Register32    // 0x504
	PRESCALER        volatile.Register32    // 0x508
	_                [13]uint32
	CC               [4]volatile.Register32 // 0x540
}

const (
	rtc0Base = 0x4000B000
	rtc0IRQ  = 11

	// INTEN bit for compare channel n is 16+n.
	compareIntShift = 16

	counterMask = 0xFFFFFF
)

var rtc0 = (*rtcRegs)(unsafe.Pointer(uintptr(rtc0Base)))

// RTCDriver implements core.TimerDriver on the nRF52 RTC0 peripheral.
type RTCDriver struct {
	regs *rtcRegs
}

// ReadCounter returns the current native counter value
func (d *RTCDriver) ReadCounter() uint32 {
	return d.regs.COUNTER.Get() & counterMask
}

// SetCompare programs a compare channel
func (d *RTCDriver) SetCompare(ch core.Channel, value uint32) {
	d.regs.CC[ch].Set(value & counterMask)
}

// EnableInterrupt unmasks a compare channel's interrupt
func (d *RTCDriver) EnableInterrupt(ch core.Channel) {
	d.regs.INTENSET.Set(1 << (compareIntShift + uint32(ch)))
}

// DisableInterrupt masks a compare channel's interrupt
func (d *RTCDriver) DisableInterrupt(ch core.Channel) {
	d.regs.INTENCLR.Set(1 << (compareIntShift + uint32(ch)))
}

// ClearPending acknowledges a compare event
func (d *RTCDriver) ClearPending(ch core.Channel) {
	d.regs.EVENTS_COMPARE[ch].Set(0)
}

// InitRTC starts RTC0 from a cleared counter and returns a running time
// driver: 24-bit counter, 32768Hz, channel 0 reserved for period
// tracking and channels 1-3 carrying alarms.
func InitRTC() (*core.TimeDriver, error) {
	hw := &RTCDriver{regs: rtc0}

	hw.regs.PRESCALER.Set(0) // full 32768Hz resolution
	hw.regs.TASKS_CLEAR.Set(1)
	hw.regs.TASKS_START.Set(1)
	for hw.regs.COUNTER.Get() != 0 {
		// Wait for the clear to take effect in the LFCLK domain.
	}

	d, err := core.InitTimeDriver(hw, core.Config{
		CounterBits: 24,
		TickHz:      32768,
		NumChannels: 4,
	})
	if err != nil {
		return nil, err
	}
	core.SetTimeDriver(d)

	intr := interrupt.New(rtc0IRQ, rtcISR)
	intr.Enable()
	return d, nil
}

// rtcISR fans one RTC0 interrupt out to the channels whose compare
// events fired.
func rtcISR(interrupt.Interrupt) {
	d := core.MustTime()
	for ch := core.Channel(0); ch < 4; ch++ {
		if rtc0.EVENTS_COMPARE[ch].Get() != 0 {
			d.HandleInterrupt(ch)
		}
	}
}
