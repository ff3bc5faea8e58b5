//go:build tinygo

package core

import "runtime/interrupt"

// State holds saved interrupt state for nested critical sections.
type State = interrupt.State

func disableInterrupts() State {
	return interrupt.Disable()
}

func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
