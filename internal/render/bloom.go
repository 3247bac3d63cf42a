package render

import "github.com/hajimehoshi/ebiten/v2"

// bloom blurs the scene by successive half-size downsamples and adds the
// result back on top, scaled by strength.
type bloom struct {
	levels []*ebiten.Image
	w, h   int
}

const bloomLevels = 3

func (b *bloom) resize(w, h int) {
	if b.w == w && b.h == h && len(b.levels) > 0 {
		return
	}
	for _, img := range b.levels {
		img.Deallocate()
	}
	b.levels = b.levels[:0]
	lw, lh := w, h
	for i := 0; i < bloomLevels; i++ {
		lw, lh = max(1, lw/2), max(1, lh/2)
		b.levels = append(b.levels, ebiten.NewImage(lw, lh))
	}
	b.w, b.h = w, h
}

func (b *bloom) apply(dst, scene *ebiten.Image, strength float64) {
	if strength <= 0 {
		return
	}
	sw, sh := scene.Bounds().Dx(), scene.Bounds().Dy()
	b.resize(sw, sh)

	src := scene
	for _, lvl := range b.levels {
		lvl.Clear()
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		op.GeoM.Scale(
			float64(lvl.Bounds().Dx())/float64(src.Bounds().Dx()),
			float64(lvl.Bounds().Dy())/float64(src.Bounds().Dy()),
		)
		lvl.DrawImage(src, op)
		src = lvl
	}

	share := float32(strength / bloomLevels)
	for _, lvl := range b.levels {
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear, Blend: ebiten.BlendLighter}
		op.GeoM.Scale(float64(sw)/float64(lvl.Bounds().Dx()), float64(sh)/float64(lvl.Bounds().Dy()))
		op.ColorScale.Scale(share, share, share, share)
		dst.DrawImage(lvl, op)
	}
}
