//go:build nrf52840 || nrf52833

// Demo firmware: a heartbeat alarm toggles the board LED once per second
// while every firing is reported over the default serial link in the
// trace wire format, for the tickmon host tool to pick up.
package main

import (
	"device/arm"
	"machine"

	"monotick/core"
	"monotick/trace"
)

var (
	heartbeat core.Alarm
	scratch   [trace.MaxFrameLen]byte
	ledState  bool
)

func main() {
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	d, err := InitRTC()
	if err != nil {
		// Timing is load-bearing for everything else; treat a broken
		// timer as fatal.
		panic(err)
	}

	interval := d.Config().TicksFromMS(1000)
	heartbeat.WakeTick = d.Now() + interval
	heartbeat.Callback = func() {
		ledState = !ledState
		machine.LED.Set(ledState)

		report(&heartbeat, d.Now())

		heartbeat.WakeTick += interval
		if err := d.Schedule(&heartbeat); err != nil {
			panic(err)
		}
	}
	if err := d.Schedule(&heartbeat); err != nil {
		panic(err)
	}

	for {
		// All work happens in alarm callbacks.
		arm.Asm("wfi")
	}
}

// report emits one firing record over the serial link.
func report(a *core.Alarm, fireTick uint64) {
	frame := trace.AppendRecord(scratch[:0], trace.Record{
		Channel:  uint8(a.Channel()),
		WakeTick: a.WakeTick,
		FireTick: fireTick,
	})
	machine.Serial.Write(frame)
}
