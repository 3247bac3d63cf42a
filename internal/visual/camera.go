package visual

import "math"

// Camera defaults.
const (
	DefaultFOV      = 60.0
	DefaultDistance = 6.0
	DefaultNear     = 0.1
	DefaultFar      = 100.0
	DefaultFog      = 0.02
	maxPitch        = math.Pi/2 - 0.01
)

// Camera is a perspective camera orbiting the origin.
type Camera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
	Distance float64
	Yaw      float64
	Pitch    float64
}

// NewCamera returns a camera looking down -Z from DefaultDistance.
func NewCamera(aspect float64) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		FOV:      DefaultFOV,
		Aspect:   aspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Distance: DefaultDistance,
	}
}

// Orbit rotates the camera by the given yaw and pitch deltas in radians.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+dPitch))
}

// Eye is the camera position.
func (c *Camera) Eye() Vec3 {
	cp := math.Cos(c.Pitch)
	return Vec3{
		X: c.Distance * math.Sin(c.Yaw) * cp,
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * math.Cos(c.Yaw) * cp,
	}
}

func (c *Camera) basis() (eye, right, up, forward Vec3) {
	eye = c.Eye()
	forward = eye.Scale(-1).Normalize()
	right = forward.Cross(Vec3{Y: 1}).Normalize()
	up = right.Cross(forward)
	return eye, right, up, forward
}

// Project maps p to normalised device coordinates in [-1,1] and returns its
// view depth. ok is false when p lies outside the near/far range.
func (c *Camera) Project(p Vec3) (x, y, depth float64, ok bool) {
	eye, right, up, forward := c.basis()
	rel := p.Sub(eye)
	depth = rel.Dot(forward)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	x = f / c.Aspect * rel.Dot(right) / depth
	y = f * rel.Dot(up) / depth
	return x, y, depth, true
}

// FogFactor is the exponential-squared fog amount at a view depth, 0 for
// no fog and approaching 1 far away.
func FogFactor(density, depth float64) float64 {
	d := density * depth
	return clamp01(1 - math.Exp(-d*d))
}
