// Package bridge translates named parameter updates pushed by a host
// application into config.Params changes. Enumerations arrive as indices
// and are mapped onto the same option names the interactive controls use.
package bridge

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/scheduler"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrBadValue        = errors.New("bad property value")
)

// Property names accepted by Apply.
const (
	PropTheme         = "theme"
	PropParticles     = "particles"
	PropFPS           = "fps"
	PropSpeed         = "speed"
	PropBloom         = "bloom"
	PropBloomStrength = "bloomStrength"
	PropSize          = "size"
	PropText          = "text"
	PropFont          = "font"
	PropTextPosition  = "textPosition"
	PropTextSize      = "textSize"
	PropTextGlow      = "textGlow"
	PropStatic        = "static"
)

// Properties lists every accepted name.
var Properties = []string{
	PropTheme, PropParticles, PropFPS, PropSpeed, PropBloom, PropBloomStrength,
	PropSize, PropText, PropFont, PropTextPosition, PropTextSize, PropTextGlow,
	PropStatic,
}

// Listener receives the parameters after every successful update.
type Listener func(config.Params)

// Bridge owns a copy of the parameters and applies host updates to it.
type Bridge struct {
	mu       sync.Mutex
	params   config.Params
	listener Listener
}

// New returns a bridge starting from p. listener may be nil.
func New(p config.Params, listener Listener) *Bridge {
	return &Bridge{params: p, listener: listener}
}

// Params returns a copy of the current parameters.
func (b *Bridge) Params() config.Params {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

// Apply sets one property. Numbers may be any Go numeric type or a numeric
// string; flags accept bools or numbers (non-zero is true).
func (b *Bridge) Apply(name string, value any) error {
	b.mu.Lock()
	next := b.params
	err := apply(&next, name, value)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		b.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function": "Apply",
			"property": name,
			"value":    value,
			"error":    err,
		}).Warn("Rejected property update")
		return err
	}
	b.params = next
	listener := b.listener
	b.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Apply",
		"property": name,
		"value":    value,
	}).Debug("Applied property update")
	if listener != nil {
		listener(next)
	}
	return nil
}

// ApplyAll applies a batch of updates, stopping at the first error.
// Updates are applied in Properties order.
func (b *Bridge) ApplyAll(updates map[string]any) error {
	for name := range updates {
		if !known(name) {
			return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
		}
	}
	for _, name := range Properties {
		v, ok := updates[name]
		if !ok {
			continue
		}
		if err := b.Apply(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Get reports a property's current value in the form Apply accepts.
func (b *Bridge) Get(name string) (any, error) {
	p := b.Params()
	switch name {
	case PropTheme:
		return indexOf(config.PresetNames, p.Preset), nil
	case PropParticles:
		return p.Particles, nil
	case PropFPS:
		if p.LowFPSMode {
			return 1, nil
		}
		return 0, nil
	case PropSpeed:
		return p.Speed, nil
	case PropBloom:
		return p.Bloom, nil
	case PropBloomStrength:
		return p.BloomStrength, nil
	case PropSize:
		return p.BaseSize, nil
	case PropText:
		return p.Text, nil
	case PropFont:
		return indexOf(config.Fonts, p.TextFont), nil
	case PropTextPosition:
		return indexOf(config.TextPositions, p.TextPosition), nil
	case PropTextSize:
		return indexOf(config.TextSizes, p.TextSize), nil
	case PropTextGlow:
		return p.TextGlow, nil
	case PropStatic:
		return p.Static, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

func apply(p *config.Params, name string, value any) error {
	switch name {
	case PropTheme:
		i, err := toIndex(value, len(config.PresetNames))
		if err != nil {
			return err
		}
		return p.ApplyPreset(config.PresetNames[i])
	case PropParticles:
		f, err := toFloat(value)
		if err != nil {
			return err
		}
		p.Particles = int(math.Round(f))
	case PropFPS:
		i, err := toIndex(value, len(scheduler.Tiers))
		if err != nil {
			return err
		}
		fps, _ := scheduler.TierFPS(i)
		p.LowFPSMode = fps < scheduler.FPSNormal
	case PropSpeed:
		return setFloat(&p.Speed, value)
	case PropBloom:
		return setBool(&p.Bloom, value)
	case PropBloomStrength:
		return setFloat(&p.BloomStrength, value)
	case PropSize:
		return setFloat(&p.BaseSize, value)
	case PropText:
		p.Text = fmt.Sprint(value)
	case PropFont:
		return setOption(&p.TextFont, config.Fonts, value)
	case PropTextPosition:
		return setOption(&p.TextPosition, config.TextPositions, value)
	case PropTextSize:
		return setOption(&p.TextSize, config.TextSizes, value)
	case PropTextGlow:
		return setBool(&p.TextGlow, value)
	case PropStatic:
		return setBool(&p.Static, value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return nil
}

func setFloat(dst *float64, value any) error {
	f, err := toFloat(value)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func setBool(dst *bool, value any) error {
	v, err := toBool(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setOption(dst *string, options []string, value any) error {
	i, err := toIndex(value, len(options))
	if err != nil {
		return err
	}
	*dst = options[i]
	return nil
}

// toFloat converts value to a finite float64.
func toFloat(value any) (float64, error) {
	f, err := numeric(value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrBadValue, value)
	}
	return f, nil
}

func numeric(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadValue, v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %v (%T)", ErrBadValue, value, value)
}

func toIndex(value any, n int) (int, error) {
	f, err := toFloat(value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not an index", ErrBadValue, value)
	}
	if f < 0 || f >= float64(n) {
		return 0, fmt.Errorf("%w: %v not in [0,%d)", ErrIndexOutOfRange, value, n)
	}
	return int(f), nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrBadValue, v)
		}
		return b, nil
	}
	f, err := toFloat(value)
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func known(name string) bool {
	return indexOf(Properties, name) >= 0
}
