package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

// Microphone capture defaults.
const (
	MicSampleRate      = 44100
	MicFramesPerBuffer = 512
)

// Microphone captures the default input device through PortAudio.
type Microphone struct {
	mu         sync.Mutex
	ring       *Ring
	stream     *portaudio.Stream
	sampleRate float64
	started    bool
	closed     bool
}

// NewMicrophone returns an unopened microphone device.
func NewMicrophone() *Microphone {
	return &Microphone{ring: NewRing(DefaultRingLen), sampleRate: MicSampleRate}
}

// SampleRate returns the capture rate in Hz.
func (m *Microphone) SampleRate() float64 { return m.sampleRate }

// Open initialises PortAudio and starts a mono input stream on the default
// device. Driver errors are classified with ClassifyError.
func (m *Microphone) Open(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	if m.started {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := portaudio.Initialize(); err != nil {
		return "", ClassifyError(fmt.Errorf("portaudio init: %w", err))
	}
	info, err := portaudio.DefaultInputDevice()
	if err != nil || info == nil {
		_ = portaudio.Terminate()
		if err == nil {
			err = ErrNoDevice
		}
		return "", fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if info.MaxInputChannels < 1 {
		_ = portaudio.Terminate()
		return "", fmt.Errorf("%w: %q has no input channels", ErrNoDevice, info.Name)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, m.sampleRate, MicFramesPerBuffer, m.process)
	if err != nil {
		_ = portaudio.Terminate()
		return "", ClassifyError(fmt.Errorf("open input stream: %w", err))
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return "", ClassifyError(fmt.Errorf("start input stream: %w", err))
	}
	m.stream = stream
	m.started = true

	logrus.WithFields(logrus.Fields{
		"function":    "Microphone.Open",
		"device":      info.Name,
		"sample_rate": m.sampleRate,
	}).Info("Microphone stream started")
	return info.Name, nil
}

// process is the PortAudio callback. It runs on the audio thread.
func (m *Microphone) process(in []float32) {
	m.ring.Write(in)
}

// Latest copies the newest captured samples.
func (m *Microphone) Latest(dst []float32) int {
	return m.ring.Latest(dst)
}

// Close stops the stream and terminates PortAudio. No callbacks fire after
// it returns.
func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if !m.started {
		return nil
	}
	m.started = false
	var firstErr error
	if err := m.stream.Stop(); err != nil {
		firstErr = err
	}
	if err := m.stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	m.stream = nil
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}
	logrus.WithFields(logrus.Fields{
		"function": "Microphone.Close",
	}).Info("Microphone stream stopped")
	return firstErr
}
