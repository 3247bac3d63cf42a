package signal

import "github.com/cbegin/rays-go/internal/lfo"

// DefaultDelta is used by Ambient.Update when the caller supplies no
// positive delta.
const DefaultDelta = 1.0 / 60

// Ambient waveforms. Distinct rates and offsets keep the combined signal
// from visibly repeating within a session.
var (
	ambientLow  = lfo.Sine{Rate: 0.5, Offset: 0, Depth: 0.15}
	ambientMid  = lfo.Sine{Rate: 0.3, Offset: 1, Depth: 0.10}
	ambientHigh = lfo.Sine{Rate: 0.7, Offset: 2, Depth: 0.08}
)

// Ambient generates a deterministic pseudo-signal from elapsed time. Its
// only state is the accumulated time, so identical delta sequences yield
// bit-identical outputs.
type Ambient struct {
	clock lfo.Clock
}

// NewAmbient returns a generator starting at time zero.
func NewAmbient() *Ambient {
	return &Ambient{}
}

// Update advances time by dt and evaluates the waves. dt <= 0 advances by
// DefaultDelta.
func (a *Ambient) Update(dt float64) State {
	if dt <= 0 {
		dt = DefaultDelta
	}
	return ambientAt(a.clock.Advance(dt))
}

// Elapsed returns the accumulated time in seconds.
func (a *Ambient) Elapsed() float64 {
	return a.clock.Elapsed()
}

// Dispose is a no-op.
func (a *Ambient) Dispose() {}

func ambientAt(t float64) State {
	wave1 := ambientLow.At(t)
	wave2 := ambientMid.At(t)
	wave3 := ambientHigh.At(t)
	return State{
		Low:    wave1,
		Mid:    wave2,
		High:   wave3,
		Total:  wave1 + wave2*0.5,
		Volume: wave1,
	}
}
