// Package config holds the visualization's constants, tunable parameters,
// colour presets and the optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Core settings.
const (
	ParticleCount        = 15000
	ParticleCountReduced = 5000
	MinParticles         = 1000
	MaxParticles         = 50000
)

// Parameter ranges.
const (
	MaxSpeed         = 2.0
	MinBaseSize      = 0.1
	MaxBaseSize      = 10.0
	MaxBloomStrength = 3.0
	MaxAudioStrength = 3.0
)

// Text options, listed in the order index-based hosts refer to them.
var (
	Fonts         = []string{"Great Vibes", "Montserrat", "Playfair Display", "Orbitron", "Monospace"}
	TextPositions = []string{"center", "top", "bottom"}
	TextSizes     = []string{"small", "medium", "large"}
)

// CustomPreset is the preset name used once colours are edited by hand.
const CustomPreset = "Custom"

// Preset is a pair of particle colours.
type Preset struct {
	Color1 string
	Color2 string
}

// PresetNames lists presets in display order. The last entry is Custom,
// which has no colours of its own.
var PresetNames = []string{
	"Ocean", "Sunset", "Forest", "Cosmic", "Fire",
	"Aurora", "Midnight", "Cherry", "Universe", CustomPreset,
}

// Presets maps preset names to colours.
var Presets = map[string]Preset{
	"Ocean":    {Color1: "#0066cc", Color2: "#00ffcc"},
	"Sunset":   {Color1: "#ff6b35", Color2: "#9b59b6"},
	"Forest":   {Color1: "#27ae60", Color2: "#16a085"},
	"Cosmic":   {Color1: "#9b59b6", Color2: "#e91e63"},
	"Fire":     {Color1: "#ff4500", Color2: "#ffd700"},
	"Aurora":   {Color1: "#00d4ff", Color2: "#7b2ff7"},
	"Midnight": {Color1: "#1a1a2e", Color2: "#16213e"},
	"Cherry":   {Color1: "#e91e63", Color2: "#ffb7c5"},
	"Universe": {Color1: "#ffffff", Color2: "#ffffff"},
}

// Params are the user-tunable visualization settings.
type Params struct {
	Color1        string  `yaml:"color1"`
	Color2        string  `yaml:"color2"`
	BaseSize      float64 `yaml:"base_size"`
	Speed         float64 `yaml:"speed"`
	Bloom         bool    `yaml:"bloom"`
	BloomStrength float64 `yaml:"bloom_strength"`
	AudioStrength float64 `yaml:"audio_strength"`
	Preset        string  `yaml:"preset"`
	LowFPSMode    bool    `yaml:"low_fps_mode"`
	Particles     int     `yaml:"particles"`
	Static        bool    `yaml:"static"`
	Text          string  `yaml:"text"`
	TextFont      string  `yaml:"text_font"`
	TextPosition  string  `yaml:"text_position"`
	TextSize      string  `yaml:"text_size"`
	TextGlow      bool    `yaml:"text_glow"`
}

// Defaults returns the startup parameters.
func Defaults() Params {
	return Params{
		Color1:        "#3380ff",
		Color2:        "#ffcc66",
		BaseSize:      3.0,
		Speed:         0.2,
		Bloom:         true,
		BloomStrength: 1.2,
		AudioStrength: 1.0,
		Preset:        CustomPreset,
		Particles:     ParticleCount,
		Text:          "Rays",
		TextFont:      "Great Vibes",
		TextPosition:  "center",
		TextSize:      "medium",
		TextGlow:      true,
	}
}

// SetReduced switches between the full and reduced particle counts.
func (p *Params) SetReduced(on bool) {
	if on {
		p.Particles = ParticleCountReduced
		return
	}
	p.Particles = ParticleCount
}

// ApplyPreset switches to a named preset. Custom keeps the current colours.
func (p *Params) ApplyPreset(name string) error {
	if name == CustomPreset {
		p.Preset = CustomPreset
		return nil
	}
	preset, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	p.Preset = name
	p.Color1 = preset.Color1
	p.Color2 = preset.Color2
	return nil
}

// Validate clamps numeric ranges and replaces non-finite numbers and
// unknown option names with defaults. It returns an error only for colours that do not parse.
func (p *Params) Validate() error {
	def := Defaults()
	p.Speed = clamp(finite(p.Speed, def.Speed), 0, MaxSpeed)
	p.BaseSize = clamp(finite(p.BaseSize, def.BaseSize), MinBaseSize, MaxBaseSize)
	p.BloomStrength = clamp(finite(p.BloomStrength, def.BloomStrength), 0, MaxBloomStrength)
	p.AudioStrength = clamp(finite(p.AudioStrength, def.AudioStrength), 0, MaxAudioStrength)
	if p.Particles < MinParticles {
		p.Particles = MinParticles
	}
	if p.Particles > MaxParticles {
		p.Particles = MaxParticles
	}
	if !contains(Fonts, p.TextFont) {
		p.TextFont = def.TextFont
	}
	if !contains(TextPositions, p.TextPosition) {
		p.TextPosition = def.TextPosition
	}
	if !contains(TextSizes, p.TextSize) {
		p.TextSize = def.TextSize
	}
	if !contains(PresetNames, p.Preset) {
		p.Preset = CustomPreset
	}
	if _, err := ParseHexColor(p.Color1); err != nil {
		return fmt.Errorf("color1: %w", err)
	}
	if _, err := ParseHexColor(p.Color2); err != nil {
		return fmt.Errorf("color2: %w", err)
	}
	return nil
}

// Load reads a YAML settings file on top of Defaults. A named preset other
// than Custom overrides the file's colours.
func Load(path string) (Params, error) {
	p := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Preset != "" && p.Preset != CustomPreset {
		if err := p.ApplyPreset(p.Preset); err != nil {
			return p, err
		}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Save writes p as YAML.
func Save(path string, p Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ErrBadColor is returned for malformed hex colours.
var ErrBadColor = errors.New("malformed hex color")

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
