package render

import (
	"image/color"
	"testing"

	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/signal"
	"github.com/cbegin/rays-go/internal/visual"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeBarPercent(t *testing.T) {
	tests := []struct {
		volume, want float64
	}{
		{0, 0},
		{0.1, 40},
		{0.25, 100},
		{0.9, 100},
		{-1, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, VolumeBarPercent(tt.volume), 1e-9)
	}
}

func TestGlowPixels(t *testing.T) {
	pix := glowPixels(spriteSize)
	require.Len(t, pix, spriteSize*spriteSize*4)
	center := ((spriteSize/2)*spriteSize + spriteSize/2) * 4
	corner := 0
	assert.Greater(t, pix[center+3], uint8(200))
	assert.Equal(t, uint8(0), pix[corner+3])
	for i := 0; i < len(pix); i += 4 {
		assert.Equal(t, pix[i+3], pix[i], "premultiplied white")
	}
}

func TestTextLayout(t *testing.T) {
	assert.Less(t, textScale("small"), textScale("medium"))
	assert.Less(t, textScale("medium"), textScale("large"))
	assert.Equal(t, textScale("medium"), textScale("unknown"))

	x, y := textOrigin("center", 100, 20, 1000, 500)
	assert.Equal(t, 450.0, x)
	assert.Equal(t, 240.0, y)
	_, top := textOrigin("top", 100, 20, 1000, 500)
	_, bottom := textOrigin("bottom", 100, 20, 1000, 500)
	assert.Less(t, top, y)
	assert.Greater(t, bottom, y)
	assert.InDelta(t, 420.0, bottom, 1e-9)
}

func TestStatusLine(t *testing.T) {
	live := signal.ProbeResult{Success: true, DeviceName: "USB Mic"}
	assert.Equal(t, "Mic: active (USB Mic)", statusLine(live, signal.KindLive))

	denied := signal.ProbeResult{DeviceName: signal.NoDeviceName, Error: signal.PermissionDeniedReason}
	assert.Equal(t, "Ambient mode: Microphone access denied", statusLine(denied, signal.KindAmbient))
	assert.Equal(t, "Ambient mode", statusLine(signal.ProbeResult{}, signal.KindAmbient))
}

func TestProjectParticle(t *testing.T) {
	cam := visual.NewCamera(2)
	p := visual.Particle{Scale: 0.5, Random: [3]float64{0.5, 0.5, 0.5}}
	params := config.Defaults()
	white := color.RGBA{255, 255, 255, 255}

	q, ok := projectParticle(p, cam, visual.Uniforms{}, params, white, white, 800, 400)
	require.True(t, ok)
	assert.GreaterOrEqual(t, q.x, 0.0)
	assert.LessOrEqual(t, q.x, 800.0)
	assert.GreaterOrEqual(t, q.y, 0.0)
	assert.LessOrEqual(t, q.y, 400.0)

	_, _, depth, _ := cam.Project(p.Position(0, 0, params.AudioStrength))
	assert.InDelta(t, p.PointSize(params.BaseSize, 0, params.AudioStrength, depth), q.size, 1e-9)
	fade := 1 - visual.FogFactor(visual.DefaultFog, depth)
	assert.InDelta(t, fade, float64(q.a), 1e-6)
	assert.InDelta(t, fade, float64(q.r), 1e-6)

	behind := visual.Particle{Random: [3]float64{0.5, 0.5, 1}}
	cam.Distance = 0.5
	_, ok = projectParticle(behind, cam, visual.Uniforms{Time: 0}, params, white, white, 800, 400)
	assert.False(t, ok)
}

func TestParticleBatch(t *testing.T) {
	var b particleBatch
	b.add(quad{x: 10, y: 20, size: 4, r: 1, g: 1, b: 1, a: 1})
	b.add(quad{x: 30, y: 40, size: 2, a: 0.5})
	assert.Equal(t, 2, b.count())
	require.Len(t, b.vertices, 8)
	assert.Equal(t, []uint16{0, 1, 2, 1, 3, 2, 4, 5, 6, 5, 7, 6}, b.indices)
	assert.Equal(t, float32(8), b.vertices[0].DstX)
	assert.Equal(t, float32(18), b.vertices[0].DstY)
	assert.Equal(t, float32(spriteSize), b.vertices[3].SrcX)
	b.reset()
	assert.Equal(t, 0, b.count())
}

func TestOrbitEasesTowardDrag(t *testing.T) {
	o := newOrbit(60)
	cam := visual.NewCamera(1)
	o.drag(100, 100, true)
	o.drag(200, 100, true)
	o.drag(200, 100, false)
	assert.InDelta(t, -0.5, o.targetYaw, 1e-12)

	o.step(cam)
	assert.Greater(t, cam.Yaw, -0.5)
	for i := 0; i < 600; i++ {
		o.step(cam)
	}
	assert.InDelta(t, -0.5, cam.Yaw, 1e-3)
	assert.InDelta(t, 0, cam.Pitch, 1e-9)

	o.drag(0, 0, true)
	o.drag(0, 10000, true)
	assert.Equal(t, 1.4, o.targetPitch)
}

func TestTrianglesOptionsKeepPremultipliedColours(t *testing.T) {
	op := trianglesOptions()
	assert.Equal(t, ebiten.ColorScaleModePremultipliedAlpha, op.ColorScaleMode)
	assert.Equal(t, ebiten.BlendLighter, op.Blend)
}

func TestFPSLabel(t *testing.T) {
	assert.Equal(t, "uncapped", fpsLabel(false, 30))
	assert.Equal(t, "30 fps (battery)", fpsLabel(true, 30))
	assert.Equal(t, "24 fps (battery)", fpsLabel(true, 24))
}
