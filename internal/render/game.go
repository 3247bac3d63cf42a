// Package render draws the particle field, bloom, overlay text and HUD with
// ebiten, pulling one frame per display refresh from a rays.Session.
package render

import (
	"image/color"
	"sync"
	"time"

	rays "github.com/cbegin/rays-go"
	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/visual"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

const fieldSeed = 1

var (
	clearColor = color.RGBA{0, 0, 0, 255}
	textColor  = color.RGBA{255, 255, 255, 255}
)

// Game implements ebiten.Game.
type Game struct {
	session *rays.Session
	start   time.Time

	mu      sync.Mutex
	pending *config.Params

	params         config.Params
	colorA, colorB color.RGBA
	field          *visual.Field
	camera         *visual.Camera
	orbit          *orbit

	sprite *ebiten.Image
	scene  *ebiten.Image
	bloom  bloom
	batch  particleBatch

	frame    rays.Frame
	hasFrame bool
	dirty    bool
	showHUD  bool
	viewW    int
	viewH    int

	// OnLowFPSToggle is called after P flips low-fps mode.
	OnLowFPSToggle func(enabled bool)
}

// NewGame prepares a renderer for an already started session.
func NewGame(session *rays.Session, width, height int) *Game {
	p := session.Params()
	g := &Game{
		session: session,
		start:   time.Now(),
		field:   visual.NewField(p.Particles, fieldSeed),
		camera:  visual.NewCamera(float64(width) / float64(height)),
		orbit:   newOrbit(ebiten.TPS()),
		showHUD: true,
		viewW:   width,
		viewH:   height,
	}
	g.applyParams(p)
	return g
}

// SetParams queues parameters for the next Update. Safe to call from any
// goroutine.
func (g *Game) SetParams(p config.Params) {
	g.mu.Lock()
	g.pending = &p
	g.mu.Unlock()
}

func (g *Game) applyParams(p config.Params) {
	if a, err := config.ParseHexColor(p.Color1); err == nil {
		g.colorA = a
	}
	if b, err := config.ParseHexColor(p.Color2); err == nil {
		g.colorB = b
	}
	if p.Particles != g.field.Len() {
		g.field.Resize(p.Particles, fieldSeed)
	}
	g.params = p
	g.dirty = true
}

func (g *Game) Update() error {
	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()
	if pending != nil {
		g.applyParams(*pending)
		g.session.SetParams(*pending)
	}

	g.handleKeys()
	mx, my := ebiten.CursorPosition()
	g.orbit.drag(mx, my, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	g.orbit.step(g.camera)

	ts := float64(time.Since(g.start).Microseconds()) / 1000
	if frame, ok := g.session.Tick(ts, 0); ok {
		g.frame = frame
		g.hasFrame = true
		g.dirty = true
	}
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		enabled := !g.session.LowFPS()
		g.session.SetLowFPS(enabled)
		g.params.LowFPSMode = enabled
		logrus.WithFields(logrus.Fields{
			"function": "Game.handleKeys",
			"low_fps":  enabled,
		}).Info("Toggled low fps mode")
		if g.OnLowFPSToggle != nil {
			g.OnLowFPSToggle(enabled)
		}
	}
}

// Draw leaves the previous image in place when no new frame was accepted;
// the window must be created with screen clearing disabled.
func (g *Game) Draw(screen *ebiten.Image) {
	if !g.dirty || !g.hasFrame {
		return
	}
	g.dirty = false
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if g.sprite == nil {
		g.sprite = newGlowSprite()
	}
	if g.scene == nil || g.scene.Bounds().Dx() != w || g.scene.Bounds().Dy() != h {
		if g.scene != nil {
			g.scene.Deallocate()
		}
		g.scene = ebiten.NewImage(w, h)
	}

	g.scene.Fill(clearColor)
	g.drawParticles(g.scene, w, h)

	screen.Fill(clearColor)
	screen.DrawImage(g.scene, nil)
	if g.params.Bloom {
		g.bloom.apply(screen, g.scene, g.params.BloomStrength)
	}
	drawOverlayText(screen, g.params, textColor)
	if g.showHUD {
		drawHUD(screen, hudInfo{
			probe:     g.session.Probe(),
			kind:      g.session.SourceKind(),
			volume:    g.frame.State.Volume,
			lowFPS:    g.session.LowFPS(),
			targetFPS: g.session.TargetFPS(),
			showHint:  g.frame.ShowHint,
		})
	}
}

func (g *Game) drawParticles(dst *ebiten.Image, w, h int) {
	u := g.frame.Uniforms
	for _, p := range g.field.Particles {
		q, ok := projectParticle(p, g.camera, u, g.params, g.colorA, g.colorB, w, h)
		if !ok {
			continue
		}
		g.batch.add(q)
		if g.batch.count() == batchParticles {
			g.batch.flush(dst, g.sprite)
		}
	}
	g.batch.flush(dst, g.sprite)
}

func (g *Game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW != g.viewW || outsideH != g.viewH {
		g.viewW, g.viewH = outsideW, outsideH
		if outsideH > 0 {
			g.camera.Aspect = float64(outsideW) / float64(outsideH)
		}
		g.dirty = true
	}
	return outsideW, outsideH
}
