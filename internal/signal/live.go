package signal

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/rays-go/internal/analysis"
	"github.com/cbegin/rays-go/internal/capture"
)

// FrequencyAnalyser produces one magnitude snapshot per call.
type FrequencyAnalyser interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// LiveOption configures a Live source.
type LiveOption func(*liveConfig)

type liveConfig struct {
	newAnalyser func(capture.Device) FrequencyAnalyser
}

func defaultLiveConfig() liveConfig {
	return liveConfig{
		newAnalyser: func(dev capture.Device) FrequencyAnalyser {
			return analysis.New(dev)
		},
	}
}

// WithAnalyser replaces the analysis stage built on a successful Initialize.
func WithAnalyser(factory func(capture.Device) FrequencyAnalyser) LiveOption {
	return func(cfg *liveConfig) {
		cfg.newAnalyser = factory
	}
}

// Live analyses a capture device and reduces each frequency snapshot to
// banded, smoothed scalars.
//
// The zero smoothing state is all zeros. Until Initialize succeeds, and after
// Dispose, Update returns the last smoothed values with Volume 0.
type Live struct {
	mu          sync.Mutex
	dev         capture.Device
	newAnalyser func(capture.Device) FrequencyAnalyser
	analyser    FrequencyAnalyser
	snapshot    []byte
	smoothed    State
	deviceName  string
	opened      bool
	active      bool
	disposed    bool
}

// NewLive wraps dev. The device is not touched until Initialize.
func NewLive(dev capture.Device, opts ...LiveOption) *Live {
	cfg := defaultLiveConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Live{dev: dev, newAnalyser: cfg.newAnalyser}
}

// Initialize opens the capture device and prepares the analysis stage.
//
// It may block while the platform negotiates device access; ctx cancels the
// wait. Every failure is returned as a *CaptureError together with a failed
// ProbeResult. If Dispose runs while the device is still opening, the late
// result is discarded and ErrDisposed is returned.
func (l *Live) Initialize(ctx context.Context) (ProbeResult, error) {
	l.mu.Lock()
	switch {
	case l.disposed:
		l.mu.Unlock()
		return l.fail(ErrDisposed)
	case l.active:
		name := l.deviceName
		l.mu.Unlock()
		return probeSuccess(name), nil
	}
	l.mu.Unlock()

	if l.dev == nil {
		return l.fail(capture.ErrNoDevice)
	}
	name, err := openDevice(ctx, l.dev)
	if err != nil {
		return l.fail(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		_ = l.dev.Close()
		logrus.WithFields(logrus.Fields{
			"function": "Live.Initialize",
			"device":   name,
		}).Debug("Source disposed during device negotiation, discarding result")
		cerr := &CaptureError{Kind: KindOther, Err: ErrDisposed}
		return probeFailure(cerr), cerr
	}
	l.opened = true
	l.analyser = l.newAnalyser(l.dev)
	l.snapshot = make([]byte, l.analyser.FrequencyBinCount())
	l.deviceName = probeSuccess(name).DeviceName
	l.active = true

	logrus.WithFields(logrus.Fields{
		"function": "Live.Initialize",
		"device":   l.deviceName,
		"bins":     len(l.snapshot),
	}).Info("Audio capture initialized")
	return probeSuccess(l.deviceName), nil
}

func (l *Live) fail(err error) (ProbeResult, error) {
	cerr := classifyCaptureError(err)
	logrus.WithFields(logrus.Fields{
		"function": "Live.Initialize",
		"kind":     cerr.Kind.String(),
		"error":    cerr.Err.Error(),
	}).Warn("Audio capture initialization failed")
	return probeFailure(cerr), cerr
}

type openResult struct {
	name string
	err  error
}

// openDevice runs dev.Open so that ctx can abandon the wait. A device that
// opens after the caller gave up is closed again.
func openDevice(ctx context.Context, dev capture.Device) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	done := make(chan openResult, 1)
	go func() {
		name, err := dev.Open(ctx)
		done <- openResult{name: name, err: err}
	}()
	select {
	case r := <-done:
		return r.name, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				_ = dev.Close()
			}
		}()
		return "", ctx.Err()
	}
}

// Update pulls one snapshot and advances the smoothed scalars by one tick.
// dt is unused: the smoothing factor is fixed per tick.
func (l *Live) Update(dt float64) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active || l.analyser == nil {
		idle := l.smoothed
		idle.Volume = 0
		return idle
	}

	l.analyser.ByteFrequencyData(l.snapshot)
	means := Reduce(l.snapshot)
	l.smoothed.approach(means.Targets(), Alpha)

	out := l.smoothed
	out.Volume = means.Total
	return out
}

// Active reports whether the source is initialised and not disposed.
func (l *Live) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// DeviceName returns the label of the opened device, or "" before a
// successful Initialize.
func (l *Live) DeviceName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deviceName
}

// Dispose stops capture and releases the analysis stage. Safe to call more
// than once and on a never-initialised source.
func (l *Live) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.disposed = true
	l.active = false
	if l.opened {
		if err := l.dev.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Live.Dispose",
				"error":    err.Error(),
			}).Warn("Closing capture device failed")
		}
		l.opened = false
	}
	l.analyser = nil
	l.snapshot = nil
}
