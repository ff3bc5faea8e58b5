//go:build !tinygo

package core

// State holds saved interrupt state. Host builds have no hardware
// interrupts; simulated handlers run synchronously on the calling
// goroutine, so the critical section is a no-op.
type State uintptr

func disableInterrupts() State {
	return 0
}

func restoreInterrupts(state State) {
}
