package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sineReader struct {
	bin float64 // frequency expressed as an FFT bin index
	amp float64
}

func (s sineReader) Latest(dst []float32) int {
	for i := range dst {
		dst[i] = float32(s.amp * math.Sin(2*math.Pi*s.bin*float64(i)/FFTSize))
	}
	return len(dst)
}

type zeroReader struct{}

func (zeroReader) Latest(dst []float32) int {
	for i := range dst {
		dst[i] = 0
	}
	return len(dst)
}

func TestAnalyserSilenceIsZero(t *testing.T) {
	a := New(zeroReader{})
	dst := make([]byte, FrequencyBinCount)
	for i := 0; i < 5; i++ {
		a.ByteFrequencyData(dst)
	}
	for i, v := range dst {
		assert.Zero(t, v, "bin %d", i)
	}
}

func TestAnalyserBinCount(t *testing.T) {
	assert.Equal(t, 128, New(zeroReader{}).FrequencyBinCount())
}

func TestAnalyserPeaksAtToneBin(t *testing.T) {
	a := New(sineReader{bin: 32, amp: 0.01})
	dst := make([]byte, FrequencyBinCount)
	for i := 0; i < 30; i++ {
		a.ByteFrequencyData(dst)
	}
	peak := 0
	for i := range dst {
		if dst[i] > dst[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 32, peak, 1)
	assert.Greater(t, dst[32], dst[100])
}

func TestAnalyserSmoothsOverTime(t *testing.T) {
	a := New(sineReader{bin: 16, amp: 0.5})
	first := make([]float64, FrequencyBinCount)
	later := make([]float64, FrequencyBinCount)
	a.FloatFrequencyData(first)
	for i := 0; i < 20; i++ {
		a.FloatFrequencyData(later)
	}
	// The smoothed magnitude ramps up from zero toward the steady value.
	assert.Less(t, first[16], later[16])
}

func TestAnalyserShortDestination(t *testing.T) {
	a := New(sineReader{bin: 4, amp: 1})
	dst := make([]byte, 8)
	assert.NotPanics(t, func() { a.ByteFrequencyData(dst) })
	a.Reset()
}

func TestToByteClamps(t *testing.T) {
	assert.Equal(t, byte(0), toByte(0))
	assert.Equal(t, byte(255), toByte(10))
	// -65 dB sits halfway between -100 and -30.
	mid := math.Pow(10, -65.0/20)
	assert.InDelta(t, 127, int(toByte(mid)), 1)
}
