package main

import (
	"bytes"
	"strings"
	"testing"

	"monotick/trace"
)

func TestMonitorSummarizesStream(t *testing.T) {
	var wire []byte
	for i := uint64(0); i < 10; i++ {
		wire = trace.AppendRecord(wire, trace.Record{
			Channel:  1,
			WakeTick: 1000 * i,
			FireTick: 1000*i + i, // latencies 0..9
		})
	}

	var out bytes.Buffer
	if err := monitor(bytes.NewReader(wire), &out); err != nil {
		t.Fatalf("monitor failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "10 records, 0 corrupt frames") {
		t.Errorf("summary missing record count:\n%s", got)
	}
	// Latencies 0..9: average 4 (integer), max 9.
	if !strings.Contains(got, "ch1: fired=10 avg_latency=4 max_latency=9") {
		t.Errorf("summary missing channel stats:\n%s", got)
	}
}

func TestMonitorCountsCorruptFrames(t *testing.T) {
	good := trace.Record{Channel: 2, WakeTick: 500, FireTick: 503}
	frame := trace.AppendRecord(nil, good)
	bad := append([]byte{}, frame...)
	bad[len(bad)-1] ^= 0xFF // break the CRC

	wire := append(bad, frame...)
	var out bytes.Buffer
	if err := monitor(bytes.NewReader(wire), &out); err != nil {
		t.Fatalf("monitor failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 records") {
		t.Errorf("good frame not recovered:\n%s", out.String())
	}
}
