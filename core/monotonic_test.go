package core

import (
	"sync"
	"testing"
)

// newTestDriver wires a simulated timer to a fresh driver.
func newTestDriver(t *testing.T, cfg Config) (*TimeDriver, *SimTimer) {
	t.Helper()
	sim := NewSimTimer(cfg.CounterBits)
	d, err := InitTimeDriver(sim, cfg)
	if err != nil {
		t.Fatalf("InitTimeDriver failed: %v", err)
	}
	sim.Handler = d.HandleInterrupt
	return d, sim
}

func TestCalcNow(t *testing.T) {
	// 24-bit counter, half period 0x800000.
	cases := []struct {
		period   uint32
		counter  uint32
		expected uint64
	}{
		{0, 0x000000, 0x0_000000},
		{0, 0x000001, 0x0_000001},
		{0, 0x7FFFFF, 0x0_7FFFFF},
		{1, 0x7FFFFF, 0x1_7FFFFF},
		{0, 0x800000, 0x0_800000},
		{1, 0x800000, 0x0_800000},
		{1, 0x800001, 0x0_800001},
		{1, 0xFFFFFF, 0x0_FFFFFF},
		{2, 0xFFFFFF, 0x1_FFFFFF},
		{1, 0x000000, 0x1_000000},
		{2, 0x000000, 0x1_000000},
	}
	for _, tc := range cases {
		if got := calcNow(tc.period, tc.counter, 23); got != tc.expected {
			t.Errorf("calcNow(%d, %#x) = %#x, want %#x", tc.period, tc.counter, got, tc.expected)
		}
	}
}

func TestInitTimeDriverConfig(t *testing.T) {
	sim := NewSimTimer(24)
	bad := []Config{
		{CounterBits: 4, TickHz: 32768, NumChannels: 4},
		{CounterBits: 40, TickHz: 32768, NumChannels: 4},
		{CounterBits: 24, TickHz: 0, NumChannels: 4},
		{CounterBits: 24, TickHz: 32768, NumChannels: 1},
		{CounterBits: 24, TickHz: 32768, NumChannels: MaxChannels + 1},
	}
	for _, cfg := range bad {
		if _, err := InitTimeDriver(sim, cfg); err == nil {
			t.Errorf("InitTimeDriver(%+v) accepted invalid config", cfg)
		}
	}
	if _, err := InitTimeDriver(sim, DefaultConfig()); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestNowTracksElapsedTicks(t *testing.T) {
	d, sim := newTestDriver(t, DefaultConfig())

	if now := d.Now(); now != 0 {
		t.Fatalf("Now() at init = %d, want 0", now)
	}

	var elapsed uint64
	for _, step := range []uint64{1, 100, 32768, 0x7FFFFF, 3} {
		sim.Advance(step)
		elapsed += step
		if now := d.Now(); now != elapsed {
			t.Fatalf("after %d ticks Now() = %d", elapsed, now)
		}
	}
}

func TestOverflowAccounting(t *testing.T) {
	const wraps = 5
	d, sim := newTestDriver(t, DefaultConfig())

	before := d.Now()
	sim.Advance(wraps << 24)
	after := d.Now()

	if diff := after - before; diff != wraps<<24 {
		t.Fatalf("Now() advanced by %#x across %d wraps, want %#x", diff, wraps, wraps<<24)
	}
	// Two half-wrap periods per native wrap.
	if d.period != 2*wraps {
		t.Fatalf("period count = %d after %d wraps, want %d", d.period, wraps, 2*wraps)
	}
}

func TestNowMonotonicAcrossPeriodBoundary(t *testing.T) {
	d, sim := newTestDriver(t, DefaultConfig())

	// Walk tick by tick through both period boundaries of one wrap.
	sim.Advance(0x7FFFF0)
	prev := d.Now()
	for i := 0; i < 0x20; i++ {
		sim.Advance(1)
		now := d.Now()
		if now < prev {
			t.Fatalf("Now() went backwards: %d after %d", now, prev)
		}
		prev = now
	}
	sim.Advance(0x7FFFE0)
	for i := 0; i < 0x40; i++ {
		sim.Advance(1)
		now := d.Now()
		if now < prev {
			t.Fatalf("Now() went backwards across wrap: %d after %d", now, prev)
		}
		prev = now
	}
}

func TestNowMonotonicConcurrent(t *testing.T) {
	d, sim := newTestDriver(t, DefaultConfig())

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := d.Now()
			for {
				select {
				case <-done:
					return
				default:
				}
				now := d.Now()
				if now < prev {
					t.Errorf("Now() went backwards: %d after %d", now, prev)
					return
				}
				prev = now
			}
		}()
	}

	// Cross several period boundaries while the readers hammer Now().
	for i := 0; i < 10000; i++ {
		sim.Advance(0x1000)
	}
	close(done)
	wg.Wait()
}
