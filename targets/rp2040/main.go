//go:build rp2040

// Demo firmware for the Pico: a heartbeat alarm blinks the LED twice per
// second and reports every firing in the trace wire format over USB CDC.
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

	d, err := InitTimer()
	if err != nil {
		panic(err)
	}

	interval := d.Config().TicksFromMS(500)
	heartbeat.WakeTick = d.Now() + interval
	heartbeat.Callback = func() {
		ledState = !ledState
		machine.LED.Set(ledState)

		frame := trace.AppendRecord(scratch[:0], trace.Record{
			Channel:  uint8(heartbeat.Channel()),
			WakeTick: heartbeat.WakeTick,
			FireTick: d.Now(),
		})
		machine.Serial.Write(frame)

		heartbeat.WakeTick += interval
		if err := d.Schedule(&heartbeat); err != nil {
			panic(err)
		}
	}
	if err := d.Schedule(&heartbeat); err != nil {
		panic(err)
	}

	for {
		arm.Asm("wfi")
	}
}
