// Package simclock tracks monotonic simulated time.
package simclock

// Clock is the simulation's monotonic time source. Time advances only
// through Advance; nothing in the simulator reads the wall clock.
type Clock struct {
	// updateInterval is the fixed Δ seconds applied per tick.
	updateInterval float64

	// seconds is the current simulated time, in seconds since t=0.
	seconds float64

	// tick is the integer index of the current tick, derived from
	// seconds / updateInterval.
	tick int
}

// New creates a Clock with the given per-tick step size. Panics if
// updateInterval is not positive; a non-positive step never advances.
func New(updateInterval float64) *Clock {
	if updateInterval <= 0 {
		panic("simclock: updateInterval must be positive")
	}
	return &Clock{updateInterval: updateInterval}
}

// Advance moves the clock forward by one updateInterval and returns
// the new tick index.
func (c *Clock) Advance() int {
	c.seconds += c.updateInterval
	c.tick++
	return c.tick
}

// Seconds returns the current simulated time in seconds.
func (c *Clock) Seconds() float64 {
	return c.seconds
}

// Tick returns the current integer tick index.
func (c *Clock) Tick() int {
	return c.tick
}

// UpdateInterval returns the configured Δ for this clock.
func (c *Clock) UpdateInterval() float64 {
	return c.updateInterval
}
