// Package visual evaluates the particle field on the CPU: per-particle seeds,
// the audio-driven motion and colour model, the orbit camera and fog.
package visual

import (
	"image/color"
	"math"
	"math/rand"
)

// Field extents and motion constants.
const (
	SpreadX = 40.0
	SpreadY = 25.0
	SpreadZ = 20.0
	OffsetZ = -2.0

	spinRate    = 0.5
	spinPhase   = 2.0
	wobbleAmp   = 0.5
	wobblePhase = 10.0
	pushGain    = 2.0
	sizeGain    = 3.0
	sizeRef     = 30.0
	colorGain   = 0.5
)

// Particle is the fixed per-particle seed data.
type Particle struct {
	Scale  float64
	Random [3]float64
}

// Field is a set of particles generated from one seed.
type Field struct {
	Particles []Particle
}

// NewField builds n particles. The same seed always yields the same field.
func NewField(n int, seed int64) *Field {
	if n < 0 {
		n = 0
	}
	r := rand.New(rand.NewSource(seed))
	ps := make([]Particle, n)
	for i := range ps {
		ps[i].Scale = r.Float64()
		ps[i].Random = [3]float64{r.Float64(), r.Float64(), r.Float64()}
	}
	return &Field{Particles: ps}
}

// Len returns the number of particles.
func (f *Field) Len() int { return len(f.Particles) }

// Resize grows or shrinks the field, keeping existing particles. New
// particles continue the seeded sequence offset by the old length.
func (f *Field) Resize(n int, seed int64) {
	if n <= len(f.Particles) {
		if n < 0 {
			n = 0
		}
		f.Particles = f.Particles[:n]
		return
	}
	extra := NewField(n-len(f.Particles), seed+int64(len(f.Particles)))
	f.Particles = append(f.Particles, extra.Particles...)
}

// Home is the particle's rest position before rotation.
func (p Particle) Home() Vec3 {
	return Vec3{
		X: (p.Random[0] - 0.5) * SpreadX,
		Y: (p.Random[1] - 0.5) * SpreadY,
		Z: (p.Random[2]-0.5)*SpreadZ + OffsetZ,
	}
}

// Position returns the particle's scene position at visual time t.
func (p Particle) Position(t, audioTotal, strength float64) Vec3 {
	home := p.Home()
	angle := t*spinRate + p.Random[0]*spinPhase
	c, s := math.Cos(angle), math.Sin(angle)
	pos := Vec3{
		X: home.X*c - home.Z*s,
		Y: home.Y + math.Sin(t+p.Random[2]*wobblePhase)*wobbleAmp,
		Z: home.X*s + home.Z*c,
	}
	push := audioTotal * pushGain * p.Random[1] * strength
	return pos.Add(pos.Normalize().Scale(push))
}

// PointSize returns the on-screen sprite size for a particle at the given
// view depth. Non-positive depths yield 0.
func (p Particle) PointSize(sizeMult, audioTotal, strength, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return (sizeMult*p.Scale + audioTotal*sizeGain*strength) * (sizeRef / depth)
}

// Mix returns the blend factor between the two theme colours.
func (p Particle) Mix(audioTotal, strength float64) float64 {
	return clamp01(audioTotal*strength*colorGain + p.Random[0])
}

// Color blends a toward b by Mix.
func (p Particle) Color(a, b color.RGBA, audioTotal, strength float64) color.RGBA {
	return Lerp(a, b, p.Mix(audioTotal, strength))
}

// Lerp mixes two colours channel by channel.
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

// Glow is the sprite alpha at normalised radius r in [0, 0.5].
func Glow(r float64) float64 {
	if r > 0.5 || r < 0 {
		return 0
	}
	g := 1 - r*2
	return g * g
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
