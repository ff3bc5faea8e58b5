package core

// Channel identifies one hardware compare channel on the timer peripheral.
// Channel 0 is reserved by the time driver for period tracking; the
// remaining channels carry alarms.
type Channel uint8

// MaxChannels is the largest compare channel count any supported timer
// peripheral exposes.
const MaxChannels = 8

// TimerDriver is the abstract compare-timer interface the time driver uses.
// Platform-specific implementations handle actual register access.
//
// All methods must be safe to call from interrupt context and from
// foreground code inside a critical section. Register access cannot fail;
// any hardware fault at this layer is fatal.
type TimerDriver interface {
	// ReadCounter returns the current native counter value
	ReadCounter() uint32

	// SetCompare programs a channel's compare register. Only the low
	// CounterBits of value are significant.
	SetCompare(ch Channel, value uint32)

	// EnableInterrupt unmasks compare-match interrupts for a channel
	EnableInterrupt(ch Channel)

	// DisableInterrupt masks compare-match interrupts for a channel
	DisableInterrupt(ch Channel)

	// ClearPending acknowledges a channel's compare-match event
	ClearPending(ch Channel)
}

// Global singleton used by package-level helpers.
var timeDriver *TimeDriver

// SetTimeDriver is called by target-specific code to register the
// initialized driver instance.
func SetTimeDriver(d *TimeDriver) {
	timeDriver = d
}

// MustTime returns the registered driver or panics if missing.
func MustTime() *TimeDriver {
	if timeDriver == nil {
		panic("time driver not configured")
	}
	return timeDriver
}

// Now returns the current tick count from the registered driver.
func Now() uint64 {
	return MustTime().Now()
}
