package visual

import "github.com/cbegin/rays-go/internal/signal"

// Uniforms are the per-frame values handed to the renderer.
type Uniforms struct {
	Time       float64
	AudioLow   float64
	AudioMid   float64
	AudioHigh  float64
	AudioTotal float64
}

// Timeline accumulates visual time, scaled by the speed parameter.
type Timeline struct {
	t      float64
	Frozen bool
}

// Advance moves visual time forward by dt·speed unless frozen.
func (tl *Timeline) Advance(dt, speed float64) float64 {
	if !tl.Frozen {
		tl.t += dt * speed
	}
	return tl.t
}

// Time returns the current visual time.
func (tl *Timeline) Time() float64 { return tl.t }

// Uniforms assembles the frame uniforms from a reactive state.
func (tl *Timeline) Uniforms(s signal.State) Uniforms {
	return Uniforms{
		Time:       tl.t,
		AudioLow:   s.Low,
		AudioMid:   s.Mid,
		AudioHigh:  s.High,
		AudioTotal: s.Total,
	}
}
