package core

import "testing"

func TestCatchUpAfterDelayedInterrupt(t *testing.T) {
	d, sim := newTestDriver(t, singleChannelConfig())

	base := d.Now()
	var order []int
	mk := func(id int, tick uint64) *Alarm {
		return &Alarm{WakeTick: tick, Callback: func() { order = append(order, id) }}
	}
	a1 := mk(1, base+10)
	a2 := mk(2, base+20)
	a3 := mk(3, base+20) // tied with a2
	a4 := mk(4, base+30)
	for _, a := range []*Alarm{a1, a2, a3, a4} {
		if err := d.Schedule(a); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
	}

	// Delay interrupt delivery past every deadline, then let the one
	// late interrupt catch up.
	sim.Hold()
	sim.Advance(100)
	if len(order) != 0 {
		t.Fatalf("alarms fired with interrupts held: %v", order)
	}
	sim.Release()

	want := []int{1, 2, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("fired %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fired %v, want %v", order, want)
		}
	}

	// Nothing left armed on the alarm channel.
	if sim.enabled[1] {
		t.Fatal("channel interrupt still enabled after queue drained")
	}
}

func TestPeriodicReschedulingFromCallback(t *testing.T) {
	d, sim := newTestDriver(t, singleChannelConfig())

	const interval = 100
	fires := 0
	var a Alarm
	a.WakeTick = d.Now() + interval
	a.Callback = func() {
		fires++
		if fires < 5 {
			a.WakeTick += interval
			if err := d.Schedule(&a); err != nil {
				t.Errorf("reschedule failed: %v", err)
			}
		}
	}
	if err := d.Schedule(&a); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	sim.Advance(5 * interval)
	if fires != 5 {
		t.Fatalf("periodic alarm fired %d times, want 5", fires)
	}
	sim.Advance(5 * interval)
	if fires != 5 {
		t.Fatalf("periodic alarm kept firing after final interval: %d", fires)
	}
}

func TestInterleavedScheduleCancelAcrossWraps(t *testing.T) {
	d, sim := newTestDriver(t, Config{CounterBits: 16, TickHz: 32768, NumChannels: 4})

	fired := make(map[int]int)
	cancelled := make(map[int]bool)
	var alarms []*Alarm
	id := 0

	schedule := func(offset uint64) int {
		id++
		n := id
		a := &Alarm{WakeTick: d.Now() + offset, Callback: func() { fired[n]++ }}
		if err := d.Schedule(a); err != nil {
			t.Fatalf("Schedule %d failed: %v", n, err)
		}
		alarms = append(alarms, a)
		return n
	}

	for round := 0; round < 8; round++ {
		schedule(50)
		victim := schedule(70000) // beyond one native wrap
		schedule(300)
		d.Cancel(alarms[victim-1])
		cancelled[victim] = true
		sim.Advance(90000)
	}

	for n := 1; n <= id; n++ {
		if cancelled[n] {
			if fired[n] != 0 {
				t.Errorf("cancelled alarm %d fired %d times", n, fired[n])
			}
		} else if fired[n] != 1 {
			t.Errorf("alarm %d fired %d times, want 1", n, fired[n])
		}
	}
}
