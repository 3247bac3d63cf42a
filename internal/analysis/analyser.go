// Package analysis reduces a window of time-domain samples to byte-valued
// frequency magnitudes, in the manner of a browser AnalyserNode.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Fixed transform settings. A 256-point transform yields 128 usable bins.
const (
	FFTSize               = 256
	FrequencyBinCount     = FFTSize / 2
	SmoothingTimeConstant = 0.8
	MinDecibels           = -100.0
	MaxDecibels           = -30.0
)

// SampleReader supplies the newest time-domain samples, oldest first.
type SampleReader interface {
	Latest(dst []float32) int
}

// Analyser turns the most recent FFTSize samples of a SampleReader into
// FrequencyBinCount magnitudes. Magnitudes are smoothed over time before the
// decibel mapping, so consecutive snapshots change gradually.
type Analyser struct {
	src      SampleReader
	window   []float64
	samples  []float32
	input    []float64
	smoothed []float64
}

// New returns an analyser over src.
func New(src SampleReader) *Analyser {
	return &Analyser{
		src:      src,
		window:   window.Blackman(FFTSize),
		samples:  make([]float32, FFTSize),
		input:    make([]float64, FFTSize),
		smoothed: make([]float64, FrequencyBinCount),
	}
}

// FrequencyBinCount returns the number of bins per snapshot.
func (a *Analyser) FrequencyBinCount() int { return FrequencyBinCount }

// ByteFrequencyData fills dst with up to FrequencyBinCount magnitudes
// scaled from [MinDecibels, MaxDecibels] to [0, 255].
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.analyse()
	n := len(dst)
	if n > FrequencyBinCount {
		n = FrequencyBinCount
	}
	for i := 0; i < n; i++ {
		dst[i] = toByte(a.smoothed[i])
	}
}

// FloatFrequencyData fills dst with up to FrequencyBinCount magnitudes in dB.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.analyse()
	n := len(dst)
	if n > FrequencyBinCount {
		n = FrequencyBinCount
	}
	for i := 0; i < n; i++ {
		dst[i] = decibels(a.smoothed[i])
	}
}

func (a *Analyser) analyse() {
	a.src.Latest(a.samples)
	for i, s := range a.samples {
		a.input[i] = float64(s) * a.window[i]
	}
	spectrum := fft.FFTReal(a.input)
	scale := 1.0 / FFTSize
	for k := 0; k < FrequencyBinCount; k++ {
		mag := cmplx.Abs(spectrum[k]) * scale
		a.smoothed[k] = SmoothingTimeConstant*a.smoothed[k] + (1-SmoothingTimeConstant)*mag
	}
}

func decibels(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}

func toByte(mag float64) byte {
	db := decibels(mag)
	scaled := 255 * (db - MinDecibels) / (MaxDecibels - MinDecibels)
	switch {
	case math.IsInf(scaled, -1) || scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	default:
		return byte(scaled)
	}
}

// Reset clears the temporal smoothing history.
func (a *Analyser) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}
