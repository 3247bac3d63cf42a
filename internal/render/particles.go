package render

import (
	"image/color"

	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/visual"
	"github.com/hajimehoshi/ebiten/v2"
)

// Particles per DrawTriangles call; four vertices each must fit uint16 indices.
const batchParticles = 16000

// Sprites smaller than this are skipped, larger ones are capped.
const (
	minPointSize = 0.5
	maxPointSize = 96
)

type particleBatch struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

// quad is one projected particle in screen space.
type quad struct {
	x, y, size float64
	r, g, b, a float32
}

// projectParticle evaluates p for the frame and maps it to screen space.
// ok is false for particles outside the view volume or too small to draw.
func projectParticle(p visual.Particle, cam *visual.Camera, u visual.Uniforms, params config.Params, colorA, colorB color.RGBA, w, h int) (quad, bool) {
	pos := p.Position(u.Time, u.AudioTotal, params.AudioStrength)
	nx, ny, depth, ok := cam.Project(pos)
	if !ok || nx < -1.2 || nx > 1.2 || ny < -1.2 || ny > 1.2 {
		return quad{}, false
	}
	size := p.PointSize(params.BaseSize, u.AudioTotal, params.AudioStrength, depth)
	if size < minPointSize {
		return quad{}, false
	}
	if size > maxPointSize {
		size = maxPointSize
	}
	c := p.Color(colorA, colorB, u.AudioTotal, params.AudioStrength)
	fade := float32(1 - visual.FogFactor(visual.DefaultFog, depth))
	return quad{
		x:    (nx + 1) / 2 * float64(w),
		y:    (1 - ny) / 2 * float64(h),
		size: size,
		r:    float32(c.R) / 255 * fade,
		g:    float32(c.G) / 255 * fade,
		b:    float32(c.B) / 255 * fade,
		a:    fade,
	}, true
}

func (b *particleBatch) reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}

func (b *particleBatch) count() int { return len(b.vertices) / 4 }

func (b *particleBatch) add(q quad) {
	half := float32(q.size / 2)
	x, y := float32(q.x), float32(q.y)
	base := uint16(len(b.vertices))
	corners := [4][4]float32{
		{x - half, y - half, 0, 0},
		{x - half, y + half, 0, spriteSize},
		{x + half, y - half, spriteSize, 0},
		{x + half, y + half, spriteSize, spriteSize},
	}
	for _, c := range corners {
		b.vertices = append(b.vertices, ebiten.Vertex{
			DstX: c[0], DstY: c[1],
			SrcX: c[2], SrcY: c[3],
			ColorR: q.r, ColorG: q.g, ColorB: q.b, ColorA: q.a,
		})
	}
	b.indices = append(b.indices, base, base+1, base+2, base+1, base+3, base+2)
}

// trianglesOptions draws quads additively. Vertex colours are already
// premultiplied by the fog fade.
func trianglesOptions() *ebiten.DrawTrianglesOptions {
	return &ebiten.DrawTrianglesOptions{
		Blend:          ebiten.BlendLighter,
		Filter:         ebiten.FilterLinear,
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
	}
}

func (b *particleBatch) flush(dst, sprite *ebiten.Image) {
	if len(b.indices) == 0 {
		return
	}
	dst.DrawTriangles(b.vertices, b.indices, sprite, trianglesOptions())
	b.reset()
}
