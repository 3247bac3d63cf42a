package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/signal"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	hudColor      = color.RGBA{220, 220, 230, 255}
	hudDimColor   = color.RGBA{140, 140, 150, 255}
	barTrackColor = color.RGBA{40, 40, 52, 200}
	barFillColor  = color.RGBA{80, 200, 255, 230}
	hintColor     = color.RGBA{255, 220, 120, 255}
)

const (
	hudX       = 16
	hudY       = 24
	hudLineH   = 18
	barWidth   = 160
	barHeight  = 8
	hintText   = "Play some music or speak into the microphone"
	legendText = "F fullscreen  H hide HUD  P low fps"
)

// VolumeBarPercent maps raw volume to the HUD bar width in percent.
func VolumeBarPercent(volume float64) float64 {
	return math.Max(0, math.Min(100, volume*400))
}

// textScale maps the text size option to a glyph scale.
func textScale(size string) float64 {
	switch size {
	case "small":
		return 2
	case "large":
		return 6
	default:
		return 4
	}
}

// textOrigin returns the top-left corner for a w×h block at the named
// position on a screen of sw×sh.
func textOrigin(position string, w, h, sw, sh float64) (float64, float64) {
	x := (sw - w) / 2
	switch position {
	case "top":
		return x, sh * 0.12
	case "bottom":
		return x, sh*0.88 - h
	default:
		return x, (sh - h) / 2
	}
}

// statusLine describes the active source for the HUD.
func statusLine(probe signal.ProbeResult, kind string) string {
	if kind == signal.KindLive {
		return "Mic: active (" + probe.DeviceName + ")"
	}
	if probe.Error != "" {
		return "Ambient mode: " + probe.Error
	}
	return "Ambient mode"
}

func drawOverlayText(dst *ebiten.Image, p config.Params, clr color.RGBA) {
	if p.Text == "" {
		return
	}
	face := basicfont.Face7x13
	scale := textScale(p.TextSize)
	bounds := text.BoundString(face, p.Text)
	w := float64(bounds.Dx()) * scale
	h := float64(bounds.Dy()) * scale
	sw, sh := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	x, y := textOrigin(p.TextPosition, w, h, sw, sh)

	draw := func(dx, dy float64, alpha float32) {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x+dx, y+dy-float64(bounds.Min.Y)*scale)
		op.ColorScale.ScaleWithColor(clr)
		op.ColorScale.ScaleAlpha(alpha)
		if alpha < 1 {
			op.Blend = ebiten.BlendLighter
		}
		text.DrawWithOptions(dst, p.Text, face, op)
	}
	if p.TextGlow {
		r := scale
		for _, o := range [][2]float64{{-r, 0}, {r, 0}, {0, -r}, {0, r}} {
			draw(o[0], o[1], 0.25)
		}
	}
	draw(0, 0, 1)
}

// fpsLabel describes the frame cap.
func fpsLabel(lowFPS bool, target int) string {
	if !lowFPS {
		return "uncapped"
	}
	return fmt.Sprintf("%d fps (battery)", target)
}

type hudInfo struct {
	probe     signal.ProbeResult
	kind      string
	volume    float64
	lowFPS    bool
	targetFPS int
	showHint  bool
}

func drawHUD(dst *ebiten.Image, info hudInfo) {
	face := basicfont.Face7x13
	y := hudY
	text.Draw(dst, statusLine(info.probe, info.kind), face, hudX, y, hudColor)
	y += hudLineH

	pct := VolumeBarPercent(info.volume)
	ebitenutil.DrawRect(dst, hudX, float64(y-barHeight), barWidth, barHeight, barTrackColor)
	ebitenutil.DrawRect(dst, hudX, float64(y-barHeight), barWidth*pct/100, barHeight, barFillColor)
	text.Draw(dst, fmt.Sprintf("%3.0f%%", pct), face, hudX+barWidth+8, y, hudDimColor)
	y += hudLineH

	text.Draw(dst, fpsLabel(info.lowFPS, info.targetFPS), face, hudX, y, hudDimColor)
	y += hudLineH
	text.Draw(dst, legendText, face, hudX, y, hudDimColor)

	if info.showHint {
		b := text.BoundString(face, hintText)
		x := (dst.Bounds().Dx() - b.Dx()) / 2
		text.Draw(dst, hintText, face, x, dst.Bounds().Dy()-32, hintColor)
	}
}
