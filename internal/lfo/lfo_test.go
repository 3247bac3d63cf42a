package lfo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSineAtZeroPhase(t *testing.T) {
	s := Sine{Rate: 0.5, Depth: 0.15}
	// sin(0) = 0, so the raised wave sits at its midpoint.
	assert.InDelta(t, 0.15, s.At(0), 1e-12)
}

func TestSineMatchesFormula(t *testing.T) {
	s := Sine{Rate: 0.7, Offset: 2, Depth: 0.08}
	for _, tm := range []float64{0, 0.016, 1, 12.5, 600} {
		want := (math.Sin(tm*0.7+2) + 1) * 0.08
		assert.Equal(t, want, s.At(tm), "t=%v", tm)
	}
}

func TestSineStaysWithinPeak(t *testing.T) {
	s := Sine{Rate: 0.3, Offset: 1, Depth: 0.1}
	for i := 0; i < 10000; i++ {
		v := s.At(float64(i) * 0.037)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, s.Peak())
	}
}

func TestSineActive(t *testing.T) {
	assert.False(t, Sine{}.Active(), "zero oscillator should not be active")
	assert.True(t, Sine{Rate: 1, Depth: 1}.Active())
	assert.False(t, Sine{Rate: 1}.Active(), "zero-depth oscillator should not be active")
}

func TestClockAccumulates(t *testing.T) {
	var c Clock
	c.Advance(0.5)
	c.Advance(0.25)
	assert.Equal(t, 0.75, c.Elapsed())
	c.Reset()
	assert.Equal(t, 0.0, c.Elapsed())
}
