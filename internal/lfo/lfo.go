package lfo

import "math"

// Sine is a raised sinusoid evaluated at an absolute time:
//
//	(sin(t*Rate + Offset) + 1) * Depth
//
// It carries no phase state, so the value is a pure function of t and stays
// within [0, 2*Depth].
type Sine struct {
	Rate   float64 // angular frequency in radians per second
	Offset float64 // phase offset in radians
	Depth  float64 // half of the peak value
}

// At returns the oscillator value at time t (seconds).
func (s Sine) At(t float64) float64 {
	return (math.Sin(t*s.Rate+s.Offset) + 1) * s.Depth
}

// Peak returns the largest value At can produce.
func (s Sine) Peak() float64 {
	return 2 * s.Depth
}

// Active returns true if the oscillator has non-zero depth and rate.
func (s Sine) Active() bool {
	return s.Depth != 0 && s.Rate != 0
}

// Clock accumulates elapsed time for oscillators that are evaluated at an
// absolute time rather than advanced per sample.
type Clock struct {
	t float64
}

// Advance adds dt seconds and returns the new elapsed time.
func (c *Clock) Advance(dt float64) float64 {
	c.t += dt
	return c.t
}

// Elapsed returns the accumulated time in seconds.
func (c *Clock) Elapsed() float64 {
	return c.t
}

// Reset zeros the clock.
func (c *Clock) Reset() {
	c.t = 0
}
