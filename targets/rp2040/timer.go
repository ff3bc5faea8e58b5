//go:build rp2040

package main

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"monotick/core"
)

// RP2040 TIMER peripheral register map (RP2040 datasheet §4.6.5). The
// counter is a 64-bit microsecond count; the four alarm registers
// compare against the low 32 bits, so the driver treats it as a 32-bit
// counter at 1MHz and widens from there.
type timerRegs struct {
	TIMEHW   volatile.Register32    // 0x00
	TIMELW   volatile.Register32    // 0x04
	TIMEHR   volatile.Register32    // 0x08
	TIMELR   volatile.Register32    // 0x0C
	ALARM    [4]volatile.Register32 // 0x10
	ARMED    volatile.Register32    // 0x20
	TIMERAWH volatile.Register32    // 0x24
	TIMERAWL volatile.Register32    // 0x28
	DBGPAUSE volatile.Register32    // 0x2C
	PAUSE    volatile.Register32    // 0x30
	INTR     volatile.Register32    // 0x34
	INTE     volatile.Register32    // 0x38
	INTF     volatile.Register32    // 0x3C
	INTS     volatile.Register32    // 0x40
}

const (
	timerBase = 0x40054000

	// TIMER_IRQ_0..3 are IRQs 0..3, one per alarm.
	timerIRQ0 = 0
	timerIRQ1 = 1
	timerIRQ2 = 2
	timerIRQ3 = 3
)

var timer = (*timerRegs)(unsafe.Pointer(uintptr(timerBase)))

// AlarmDriver implements core.TimerDriver on the RP2040 TIMER alarms.
type AlarmDriver struct {
	regs *timerRegs
}

// ReadCounter returns the low word of the free-running counter
func (d *AlarmDriver) ReadCounter() uint32 {
	return d.regs.TIMERAWL.Get()
}

// SetCompare programs an alarm register. Writing arms the alarm.
func (d *AlarmDriver) SetCompare(ch core.Channel, value uint32) {
	d.regs.ALARM[ch].Set(value)
}

// EnableInterrupt unmasks an alarm's interrupt
func (d *AlarmDriver) EnableInterrupt(ch core.Channel) {
	d.regs.INTE.Set(d.regs.INTE.Get() | 1<<ch)
}

// DisableInterrupt masks an alarm's interrupt and disarms the alarm
func (d *AlarmDriver) DisableInterrupt(ch core.Channel) {
	d.regs.INTE.Set(d.regs.INTE.Get() &^ (1 << ch))
	d.regs.ARMED.Set(1 << ch) // write-1 disarms
}

// ClearPending acknowledges an alarm's interrupt
func (d *AlarmDriver) ClearPending(ch core.Channel) {
	d.regs.INTR.Set(1 << ch) // write-1 clears
}

// InitTimer returns a running time driver on the RP2040 TIMER: 32-bit
// counter at 1MHz, alarm 0 reserved for period tracking and alarms 1-3
// carrying deadlines.
func InitTimer() (*core.TimeDriver, error) {
	hw := &AlarmDriver{regs: timer}

	d, err := core.InitTimeDriver(hw, core.Config{
		CounterBits: 32,
		TickHz:      1000000,
		NumChannels: 4,
	})
	if err != nil {
		return nil, err
	}
	core.SetTimeDriver(d)

	// Each alarm has its own interrupt line.
	interrupt.New(timerIRQ0, alarm0ISR).Enable()
	interrupt.New(timerIRQ1, alarm1ISR).Enable()
	interrupt.New(timerIRQ2, alarm2ISR).Enable()
	interrupt.New(timerIRQ3, alarm3ISR).Enable()

	return d, nil
}

func alarm0ISR(interrupt.Interrupt) { core.MustTime().HandleInterrupt(0) }
func alarm1ISR(interrupt.Interrupt) { core.MustTime().HandleInterrupt(1) }
func alarm2ISR(interrupt.Interrupt) { core.MustTime().HandleInterrupt(2) }
func alarm3ISR(interrupt.Interrupt) { core.MustTime().HandleInterrupt(3) }
