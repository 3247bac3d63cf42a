package render

import (
	"github.com/cbegin/rays-go/internal/visual"
	"github.com/charmbracelet/harmonica"
)

// Radians of camera rotation per dragged pixel.
const dragSensitivity = 0.005

// orbit eases the camera toward the yaw/pitch set by mouse drags.
type orbit struct {
	spring       harmonica.Spring
	yaw, yawVel  float64
	pitch, pVel  float64
	targetYaw    float64
	targetPitch  float64
	dragging     bool
	lastX, lastY int
}

func newOrbit(fps int) *orbit {
	return &orbit{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.8)}
}

// drag feeds the cursor position while the button is held.
func (o *orbit) drag(x, y int, pressed bool) {
	if !pressed {
		o.dragging = false
		return
	}
	if o.dragging {
		o.targetYaw -= float64(x-o.lastX) * dragSensitivity
		o.targetPitch += float64(y-o.lastY) * dragSensitivity
		if o.targetPitch > 1.4 {
			o.targetPitch = 1.4
		}
		if o.targetPitch < -1.4 {
			o.targetPitch = -1.4
		}
	}
	o.dragging = true
	o.lastX, o.lastY = x, y
}

// step advances the spring one frame and applies it to cam.
func (o *orbit) step(cam *visual.Camera) {
	o.yaw, o.yawVel = o.spring.Update(o.yaw, o.yawVel, o.targetYaw)
	o.pitch, o.pVel = o.spring.Update(o.pitch, o.pVel, o.targetPitch)
	cam.Yaw = 0
	cam.Pitch = 0
	cam.Orbit(o.yaw, o.pitch)
}
