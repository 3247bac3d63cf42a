package rays

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/cbegin/rays-go/internal/bridge"
	"github.com/cbegin/rays-go/internal/capture"
	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deniedDevice struct {
	closed int
}

func (d *deniedDevice) Open(context.Context) (string, error) {
	return "", fmt.Errorf("getUserMedia: %w", capture.ErrPermissionDenied)
}
func (d *deniedDevice) Latest(dst []float32) int { return 0 }
func (d *deniedDevice) Close() error             { d.closed++; return nil }

// gatedDevice blocks in Open until gate is closed.
type gatedDevice struct {
	mu      sync.Mutex
	entered chan struct{}
	gate    chan struct{}
	closed  int
}

func newGatedDevice() *gatedDevice {
	return &gatedDevice{entered: make(chan struct{}), gate: make(chan struct{})}
}

func (d *gatedDevice) Open(context.Context) (string, error) {
	close(d.entered)
	<-d.gate
	return "Gated Mic", nil
}
func (d *gatedDevice) Latest(dst []float32) int { return 0 }
func (d *gatedDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}
func (d *gatedDevice) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fullScale struct{}

func (fullScale) FrequencyBinCount() int { return 128 }
func (fullScale) ByteFrequencyData(dst []byte) {
	for i := range dst {
		dst[i] = 255
	}
}

func loudAnalyser(capture.Device) signal.FrequencyAnalyser { return fullScale{} }

func ambientExpected(t float64) signal.State {
	w1 := (math.Sin(t*0.5) + 1) * 0.15
	w2 := (math.Sin(t*0.3+1) + 1) * 0.10
	w3 := (math.Sin(t*0.7+2) + 1) * 0.08
	return signal.State{Low: w1, Mid: w2, High: w3, Total: w1 + w2*0.5, Volume: w1}
}

func assertState(t *testing.T, want, got signal.State) {
	t.Helper()
	assert.InDelta(t, want.Low, got.Low, 1e-12)
	assert.InDelta(t, want.Mid, got.Mid, 1e-12)
	assert.InDelta(t, want.High, got.High, 1e-12)
	assert.InDelta(t, want.Total, got.Total, 1e-12)
	assert.InDelta(t, want.Volume, got.Volume, 1e-12)
}

func TestSessionPermissionDeniedFallsBackToAmbient(t *testing.T) {
	dev := &deniedDevice{}
	s := NewSession(WithDevice(dev))
	defer s.Close()

	probe := s.Start(context.Background())
	assert.False(t, probe.Success)
	assert.Equal(t, signal.NoDeviceName, probe.DeviceName)
	assert.Equal(t, signal.PermissionDeniedReason, probe.Error)
	assert.Equal(t, signal.KindAmbient, s.SourceKind())

	frame, ok := s.Tick(0, 0.016)
	require.True(t, ok)
	assertState(t, ambientExpected(0.016), frame.State)
	assert.False(t, frame.ShowHint)
	assert.Equal(t, frame.State.Total, frame.Uniforms.AudioTotal)
	assert.InDelta(t, 0.016*config.Defaults().Speed, frame.Uniforms.Time, 1e-12)
}

func TestSessionAmbientOnly(t *testing.T) {
	s := NewSession(WithAmbientOnly(true))
	defer s.Close()
	probe := s.Start(context.Background())
	assert.False(t, probe.Success)
	assert.Equal(t, AmbientReason, probe.Error)
	assert.Equal(t, signal.KindAmbient, s.SourceKind())

	frame, ok := s.Tick(0, 0)
	require.True(t, ok)
	assertState(t, ambientExpected(signal.DefaultDelta), frame.State)
}

func TestSessionLiveSilenceShowsHint(t *testing.T) {
	dev := &capture.Silence{Name: "Test Mic"}
	s := NewSession(WithDevice(dev))
	probe := s.Start(context.Background())
	require.True(t, probe.Success)
	assert.Equal(t, "Test Mic", probe.DeviceName)
	assert.Equal(t, signal.KindLive, s.SourceKind())

	frame, ok := s.Tick(0, 0.016)
	require.True(t, ok)
	assert.Equal(t, 0.0, frame.State.Volume)
	assert.True(t, frame.ShowHint)

	s.Close()
	assert.True(t, dev.Closed())
	_, ok = s.Tick(16, 0.016)
	assert.False(t, ok)
}

func TestSessionLiveLoudInput(t *testing.T) {
	s := NewSession(
		WithDevice(&capture.Silence{}),
		WithLiveOptions(signal.WithAnalyser(loudAnalyser)),
	)
	defer s.Close()
	probe := s.Start(context.Background())
	require.True(t, probe.Success)
	assert.Equal(t, signal.DefaultDeviceName, probe.DeviceName)

	frame, ok := s.Tick(0, 0.016)
	require.True(t, ok)
	assert.Equal(t, 1.0, frame.State.Volume)
	assert.InDelta(t, 0.4, frame.State.Total, 1e-12)
	assert.InDelta(t, 0.2, frame.State.Low, 1e-12)
	assert.False(t, frame.ShowHint)
}

func TestSessionTickBeforeStart(t *testing.T) {
	s := NewSession(WithAmbientOnly(true))
	_, ok := s.Tick(0, 0.016)
	assert.False(t, ok)
	assert.Equal(t, "", s.SourceKind())
}

func TestSessionStartTwiceKeepsSource(t *testing.T) {
	s := NewSession(WithAmbientOnly(true))
	defer s.Close()
	first := s.Start(context.Background())
	second := s.Start(context.Background())
	assert.Equal(t, first, second)
}

func TestSessionLowFPSThrottle(t *testing.T) {
	s := NewSession(WithAmbientOnly(true), WithLowFPS(true))
	defer s.Close()
	s.Start(context.Background())
	require.True(t, s.LowFPS())

	var accepted []float64
	for _, ts := range []float64{0, 10, 20, 30, 40} {
		if _, ok := s.Tick(ts, 0); ok {
			accepted = append(accepted, ts)
		}
	}
	assert.Equal(t, []float64{0, 40}, accepted)
}

func TestSessionDerivesDeltaFromTimestamps(t *testing.T) {
	s := NewSession(WithAmbientOnly(true))
	defer s.Close()
	s.Start(context.Background())

	_, ok := s.Tick(1000, 0)
	require.True(t, ok)
	frame, ok := s.Tick(1100, 0)
	require.True(t, ok)
	assertState(t, ambientExpected(signal.DefaultDelta+0.1), frame.State)
}

func TestSessionUnthrottledByDefault(t *testing.T) {
	s := NewSession(WithAmbientOnly(true))
	defer s.Close()
	s.Start(context.Background())
	for _, ts := range []float64{0, 1, 2, 3} {
		_, ok := s.Tick(ts, 0.001)
		assert.True(t, ok)
	}
	s.SetLowFPS(true)
	_, ok := s.Tick(4, 0.001)
	assert.True(t, ok, "first frame after enabling is accepted")
	_, ok = s.Tick(5, 0.001)
	assert.False(t, ok)
}

func TestSessionSetParamsFreezesTime(t *testing.T) {
	p := config.Defaults()
	p.Speed = 1
	s := NewSession(WithAmbientOnly(true), WithParams(p))
	defer s.Close()
	s.Start(context.Background())

	frame, _ := s.Tick(0, 0.5)
	assert.InDelta(t, 0.5, frame.Uniforms.Time, 1e-12)

	p.Static = true
	s.SetParams(p)
	frame, _ = s.Tick(500, 0.5)
	assert.InDelta(t, 0.5, frame.Uniforms.Time, 1e-12)
	assert.True(t, s.Params().Static)
}

func TestRenderTrace(t *testing.T) {
	states := RenderTrace(signal.NewAmbient(), UniformDeltas(3, 0.1))
	require.Len(t, states, 3)
	assertState(t, ambientExpected(0.1), states[0])
	assertState(t, ambientExpected(0.3), states[2])

	again := RenderTrace(signal.NewAmbient(), UniformDeltas(3, 0.1))
	assert.Equal(t, states, again)
	assert.Empty(t, UniformDeltas(-1, 0.1))
}

func TestWriteTrace(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, RenderTrace(signal.NewAmbient(), UniformDeltas(2, 0.1))))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "frame\t"))
	assert.True(t, strings.HasPrefix(lines[2], "1\t"))
}

func TestSessionHostFPSTierLiftsStartupCap(t *testing.T) {
	s := NewSession(WithAmbientOnly(true), WithLowFPS(true))
	defer s.Close()
	s.Start(context.Background())
	require.True(t, s.LowFPS())

	br := bridge.New(s.Params(), s.SetParams)
	tier, err := br.Get(bridge.PropFPS)
	require.NoError(t, err)
	assert.Equal(t, 1, tier)

	require.NoError(t, br.Apply(bridge.PropFPS, 0))
	assert.False(t, s.LowFPS())
	for _, ts := range []float64{0, 1, 2} {
		_, ok := s.Tick(ts, 0.001)
		assert.True(t, ok)
	}

	require.NoError(t, br.Apply(bridge.PropFPS, 1))
	assert.True(t, s.LowFPS())
	assert.Equal(t, 30, s.TargetFPS())
}

func TestSessionRepeatedTimestampDoesNotAdvance(t *testing.T) {
	s := NewSession(WithAmbientOnly(true))
	defer s.Close()
	s.Start(context.Background())

	first, ok := s.Tick(200, 0)
	require.True(t, ok)
	again, ok := s.Tick(200, 0)
	require.True(t, ok)
	assert.Equal(t, first, again)

	next, ok := s.Tick(300, 0)
	require.True(t, ok)
	assertState(t, ambientExpected(signal.DefaultDelta+0.1), next.State)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	dev := &deniedDevice{}
	live := &capture.Silence{}
	for _, s := range []*Session{
		NewSession(WithDevice(dev)),
		NewSession(WithDevice(live)),
		NewSession(WithAmbientOnly(true)),
	} {
		s.Start(context.Background())
		s.Close()
		s.Close()
		_, ok := s.Tick(0, 0.016)
		assert.False(t, ok)
	}
	assert.True(t, live.Closed())
	assert.Equal(t, 0, dev.closed)
}

func TestSessionCloseDuringPendingStart(t *testing.T) {
	dev := newGatedDevice()
	s := NewSession(WithDevice(dev))

	done := make(chan signal.ProbeResult, 1)
	go func() { done <- s.Start(context.Background()) }()
	<-dev.entered
	s.Close()
	close(dev.gate)
	res := <-done

	assert.True(t, res.Success)
	assert.Equal(t, 1, dev.closeCount(), "late source disposed")
	assert.Equal(t, "", s.SourceKind())
	_, ok := s.Tick(0, 0.016)
	assert.False(t, ok)
}
