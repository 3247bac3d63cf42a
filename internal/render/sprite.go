package render

import (
	"math"

	"github.com/cbegin/rays-go/internal/visual"
	"github.com/hajimehoshi/ebiten/v2"
)

const spriteSize = 32

// glowPixels returns premultiplied RGBA pixels for a white radial glow
// sprite of size×size.
func glowPixels(size int) []byte {
	pix := make([]byte, size*size*4)
	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - half) / float64(size)
			dy := (float64(y) + 0.5 - half) / float64(size)
			a := uint8(math.Round(visual.Glow(math.Hypot(dx, dy)) * 255))
			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = a, a, a, a
		}
	}
	return pix
}

func newGlowSprite() *ebiten.Image {
	img := ebiten.NewImage(spriteSize, spriteSize)
	img.WritePixels(glowPixels(spriteSize))
	return img
}
