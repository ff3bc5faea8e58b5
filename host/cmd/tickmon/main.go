// tickmon reads alarm firing reports from a device running the monotick
// demo firmware and prints per-channel latency statistics: how many ticks
// late each alarm callback ran relative to its requested wake tick.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"monotick/host/serial"
	"monotick/trace"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	every   = flag.Int("every", 100, "Print a summary every N records")
	verbose = flag.Bool("verbose", false, "Print each record as it arrives")
)

// stats accumulates latency figures for one channel.
type stats struct {
	count uint64
	total uint64
	max   uint64
}

func (s *stats) add(lat uint64) {
	s.count++
	s.total += lat
	if lat > s.max {
		s.max = lat
	}
}

func main() {
	flag.Parse()

	port, err := serial.Open(serial.DefaultConfig(*device))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()
	fmt.Printf("Listening on %s (%d baud)\n", *device, *baud)

	if err := monitor(port, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func monitor(port io.Reader, out io.Writer) error {
	var (
		dec      trace.Decoder
		perCh    [8]stats
		received int
		dropped  int
		buf      [256]byte
	)

	for {
		n, err := port.Read(buf[:])
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				rec, ok, derr := dec.Next()
				if derr != nil {
					dropped++
					continue
				}
				if !ok {
					break
				}
				received++
				if int(rec.Channel) < len(perCh) {
					perCh[rec.Channel].add(rec.Latency())
				}
				if *verbose {
					fmt.Fprintf(out, "ch=%d wake=%d fire=%d latency=%d\n",
						rec.Channel, rec.WakeTick, rec.FireTick, rec.Latency())
				}
				if received%*every == 0 {
					printSummary(out, perCh[:], received, dropped)
				}
			}
		}
		if err == io.EOF {
			printSummary(out, perCh[:], received, dropped)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

func printSummary(out io.Writer, perCh []stats, received, dropped int) {
	fmt.Fprintf(out, "--- %d records, %d corrupt frames ---\n", received, dropped)
	for ch, s := range perCh {
		if s.count == 0 {
			continue
		}
		fmt.Fprintf(out, "  ch%d: fired=%d avg_latency=%d max_latency=%d ticks\n",
			ch, s.count, s.total/s.count, s.max)
	}
}
