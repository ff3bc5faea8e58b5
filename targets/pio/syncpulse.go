//go:build rp2040

// Package pio generates hardware-timed sync pulse trains on the RP2040
// PIO. An alarm callback kicks off a train with a single FIFO write, so
// pulse edges carry PIO-level jitter instead of interrupt-latency jitter.
// Typical use: frame-sync or trigger outputs that must start on a tick
// deadline scheduled through the time driver.
package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO pulse program. Command word format:
//
//	Bits 0-15:  pulse count
//	Bits 16-23: gap cycles between pulses
//
// The program pulls one command per train, then emits <count> pulses of
// 8 PIO cycles high with <gap> extra cycles low between them.
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(), // 1: out x, 16 (pulse count)
		asm.Out(rp2pio.OutDestY, 8).Encode(),  // 2: out y, 8 (gap cycles)
		// pulse_loop:
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 3: set pins, 1 [7]
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 4: set pins, 0
		// gap_loop:
		asm.Jmp(5, rp2pio.JmpYNZeroDec).Encode(), // 5: jmp y--, 5
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(), // 6: jmp x--, 3
		// .wrap
	}
}

const pulseProgramOrigin = 0 // load at offset 0 so jump targets hold

// SyncPulse drives one output pin from a PIO state machine.
type SyncPulse struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewSyncPulse claims a state machine on the given PIO block.
// pioNum: 0 for PIO0, 1 for PIO1; smNum: 0-3.
func NewSyncPulse(pioNum, smNum uint8) *SyncPulse {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &SyncPulse{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the pulse program and points it at the output pin.
func (s *SyncPulse) Init(pin uint8) error {
	s.pin = machine.Pin(pin)

	s.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := s.pio.AddProgram(program, pulseProgramOrigin)
	if err != nil {
		return err
	}
	s.offset = offset

	s.pin.Configure(machine.PinConfig{Mode: s.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(s.pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0) // full speed, the program counts cycles

	s.sm.Init(offset, cfg)
	s.sm.SetPindirsConsecutive(s.pin, 1, true)
	s.sm.SetPinsConsecutive(s.pin, 1, false)
	s.sm.SetEnabled(true)
	return nil
}

// Kick starts a pulse train. Non-blocking when FIFO space is available,
// which makes it safe to call from an alarm callback; a full FIFO means
// trains are being kicked faster than they drain, and the caller's
// schedule is already broken, so the brief spin is acceptable.
func (s *SyncPulse) Kick(count uint16, gapCycles uint8) {
	cmd := uint32(count) | uint32(gapCycles)<<16
	for s.sm.IsTxFIFOFull() {
	}
	s.sm.TxPut(cmd)
}

// Stop halts and drains the state machine.
func (s *SyncPulse) Stop() {
	s.sm.SetEnabled(false)
	s.sm.ClearFIFOs()
	s.sm.Restart()
	s.sm.SetEnabled(true)
}
