// Package rays drives the audio-reactive particle visualization: it picks a
// signal source at startup, throttles frames, and turns each accepted frame
// into renderer uniforms.
package rays

import (
	"context"
	"sync"

	"github.com/cbegin/rays-go/internal/capture"
	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/scheduler"
	"github.com/cbegin/rays-go/internal/signal"
	"github.com/cbegin/rays-go/internal/visual"
	"github.com/sirupsen/logrus"
)

// AmbientReason is the probe error reported when live capture is disabled.
const AmbientReason = "Live capture disabled"

type Option func(*sessionConfig)

type sessionConfig struct {
	device      capture.Device
	ambientOnly bool
	targetFPS   int
	lowFPS      bool
	params      config.Params
	liveOpts    []signal.LiveOption
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{params: config.Defaults()}
}

// WithDevice sets the capture device probed by Start. Without it Start
// probes the default microphone.
func WithDevice(dev capture.Device) Option {
	return func(cfg *sessionConfig) {
		cfg.device = dev
	}
}

func WithAmbientOnly(enabled bool) Option {
	return func(cfg *sessionConfig) {
		cfg.ambientOnly = enabled
	}
}

// WithTargetFPS sets the frame cap used in low-fps mode.
func WithTargetFPS(fps int) Option {
	return func(cfg *sessionConfig) {
		cfg.targetFPS = fps
	}
}

func WithLowFPS(enabled bool) Option {
	return func(cfg *sessionConfig) {
		cfg.lowFPS = enabled
	}
}

func WithParams(p config.Params) Option {
	return func(cfg *sessionConfig) {
		cfg.params = p
	}
}

// WithLiveOptions forwards options to the live capture source.
func WithLiveOptions(opts ...signal.LiveOption) Option {
	return func(cfg *sessionConfig) {
		cfg.liveOpts = append(cfg.liveOpts, opts...)
	}
}

// Frame is the result of one accepted tick.
type Frame struct {
	State    signal.State
	Uniforms visual.Uniforms
	// ShowHint is set when live capture is running but hears nothing.
	ShowHint bool
}

type Session struct {
	mu        sync.Mutex
	cfg       sessionConfig
	params    config.Params
	source    signal.Source
	probe     signal.ProbeResult
	throttle  *scheduler.Throttle
	timeline  visual.Timeline
	lowFPS    bool
	lastTs    float64
	hasLastTs bool
	last      Frame
	closed    bool
}

func NewSession(opts ...Option) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Session{
		cfg:    cfg,
		params: cfg.params,
		lowFPS: cfg.lowFPS || cfg.params.LowFPSMode,
	}
	s.params.LowFPSMode = s.lowFPS
	s.throttle = scheduler.NewThrottle(s.lowTarget())
	s.timeline.Frozen = cfg.params.Static
	return s
}

func (s *Session) lowTarget() int {
	if s.cfg.targetFPS > 0 {
		return s.cfg.targetFPS
	}
	return scheduler.FPSBattery
}

// Start chooses the signal source. Live capture is probed first; any
// failure falls back to the ambient generator, so Start always leaves the
// session with a source. The probe result describes the live attempt.
func (s *Session) Start(ctx context.Context) signal.ProbeResult {
	s.mu.Lock()
	if s.source != nil {
		probe := s.probe
		s.mu.Unlock()
		return probe
	}
	cfg := s.cfg
	s.mu.Unlock()

	var (
		src   signal.Source
		probe signal.ProbeResult
	)
	if cfg.ambientOnly {
		probe = signal.ProbeResult{DeviceName: signal.NoDeviceName, Error: AmbientReason}
		src = signal.NewAmbient()
	} else {
		dev := cfg.device
		if dev == nil {
			dev = capture.NewMicrophone()
		}
		live := signal.NewLive(dev, cfg.liveOpts...)
		res, err := live.Initialize(ctx)
		probe = res
		if err != nil {
			live.Dispose()
			logrus.WithFields(logrus.Fields{
				"function":          "Session.Start",
				"permission_denied": signal.PermissionDenied(err),
				"error":             err,
			}).Warn("Live capture unavailable, using ambient mode")
			src = signal.NewAmbient()
		} else {
			src = live
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.source != nil {
		src.Dispose()
		return probe
	}
	s.source = src
	s.probe = probe
	logrus.WithFields(logrus.Fields{
		"function": "Session.Start",
		"source":   signal.Kind(src),
		"device":   probe.DeviceName,
	}).Info("Session started")
	return probe
}

// Tick runs one display refresh at timestampMs. It returns false when the
// refresh is skipped, either by the low-fps throttle or because the session
// has no source. A non-positive dt is derived from the previous accepted
// timestamp; on the first frame the source's default delta applies. A
// refresh at or before the previous timestamp repeats the previous frame.
func (s *Session) Tick(timestampMs, dt float64) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil || s.closed {
		return Frame{}, false
	}
	if s.lowFPS && !s.throttle.Accept(timestampMs) {
		return Frame{}, false
	}
	if dt <= 0 && s.hasLastTs {
		dt = (timestampMs - s.lastTs) / 1000
		if dt <= 0 {
			return s.last, true
		}
	}
	s.lastTs = timestampMs
	s.hasLastTs = true

	state := s.source.Update(dt)
	if dt <= 0 {
		dt = signal.DefaultDelta
	}
	s.timeline.Advance(dt, s.params.Speed)
	_, live := s.source.(*signal.Live)
	s.last = Frame{
		State:    state,
		Uniforms: s.timeline.Uniforms(state),
		ShowHint: live && state.Volume == 0,
	}
	return s.last, true
}

// SetParams applies new visualization parameters, including the low-fps
// and static flags. p.LowFPSMode replaces any cap set by WithLowFPS.
func (s *Session) SetParams(p config.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	s.timeline.Frozen = p.Static
	s.setLowFPS(p.LowFPSMode)
}

// SetLowFPS switches the frame cap on or off.
func (s *Session) SetLowFPS(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.LowFPSMode = enabled
	s.setLowFPS(enabled)
}

func (s *Session) setLowFPS(enabled bool) {
	if enabled == s.lowFPS {
		return
	}
	s.lowFPS = enabled
	s.throttle.Reset()
	logrus.WithFields(logrus.Fields{
		"function": "Session.SetLowFPS",
		"enabled":  enabled,
		"target":   s.throttle.Target(),
	}).Info("Frame cap changed")
}

func (s *Session) LowFPS() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lowFPS
}

// TargetFPS is the frame cap applied in low-fps mode.
func (s *Session) TargetFPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.throttle.Target()
}

func (s *Session) Params() config.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Probe returns the result of the live capture attempt made by Start.
func (s *Session) Probe() signal.ProbeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probe
}

// SourceKind reports "live", "ambient", or "" before Start.
func (s *Session) SourceKind() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return ""
	}
	return signal.Kind(s.source)
}

// Close disposes the active source. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.source != nil {
		s.source.Dispose()
	}
}
