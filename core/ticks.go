package core

// Default configuration matches the nRF52 RTC: a 24-bit counter clocked
// from the 32.768kHz low-frequency oscillator with four compare channels.
const (
	DefaultCounterBits = 24
	DefaultTickHz      = 32768
	DefaultChannels    = 4
)

// Config describes the hardware timer a TimeDriver runs on.
type Config struct {
	CounterBits uint8  // width of the native counter in bits (8..32)
	TickHz      uint32 // counter increments per second
	NumChannels uint8  // compare channels, including the one reserved for period tracking
}

// DefaultConfig returns the nRF52 RTC configuration.
func DefaultConfig() Config {
	return Config{
		CounterBits: DefaultCounterBits,
		TickHz:      DefaultTickHz,
		NumChannels: DefaultChannels,
	}
}

// TicksFromUS converts microseconds to timer ticks
func (c Config) TicksFromUS(us uint64) uint64 {
	return us * uint64(c.TickHz) / 1000000
}

// TicksToUS converts timer ticks to microseconds
func (c Config) TicksToUS(ticks uint64) uint64 {
	return ticks * 1000000 / uint64(c.TickHz)
}

// TicksFromMS converts milliseconds to timer ticks
func (c Config) TicksFromMS(ms uint64) uint64 {
	return ms * uint64(c.TickHz) / 1000
}

// TicksToMS converts timer ticks to milliseconds
func (c Config) TicksToMS(ticks uint64) uint64 {
	return ticks * 1000 / uint64(c.TickHz)
}
