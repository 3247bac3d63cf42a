// Package audio plays decoded float32 streams through ebiten's audio
// context while handing every played buffer to a tap.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Tap receives interleaved stereo float32 samples as they are handed to the
// audio driver. It runs on the audio thread; keep work brief and
// non-blocking.
type Tap func(samples []float32)

// TapReader passes a little-endian float32 stream through unchanged and
// decodes each complete sample for the tap.
type TapReader struct {
	mu      sync.Mutex
	src     io.Reader
	tap     Tap
	pending [4]byte
	npend   int
	buf     []float32
}

func NewTapReader(src io.Reader, tap Tap) *TapReader {
	return &TapReader{src: src, tap: tap}
}

func (r *TapReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.src.Read(p)
	if n > 0 && r.tap != nil {
		r.decode(p[:n])
	}
	return n, err
}

func (r *TapReader) decode(b []byte) {
	r.buf = r.buf[:0]
	if r.npend > 0 {
		k := copy(r.pending[r.npend:], b)
		r.npend += k
		b = b[k:]
		if r.npend < 4 {
			return
		}
		r.buf = append(r.buf, math.Float32frombits(binary.LittleEndian.Uint32(r.pending[:])))
		r.npend = 0
	}
	for len(b) >= 4 {
		r.buf = append(r.buf, math.Float32frombits(binary.LittleEndian.Uint32(b)))
		b = b[4:]
	}
	r.npend = copy(r.pending[:], b)
	if len(r.buf) > 0 {
		r.tap(r.buf)
	}
}

func (r *TapReader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// SharedContext returns the process-wide ebiten audio context. ebiten allows
// one context per process, so every caller must agree on the sample rate.
func SharedContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		if c := ebitaudio.CurrentContext(); c != nil {
			audioContext = c
			audioSampleRate = c.SampleRate()
			return
		}
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer plays a stereo float32 stream at sampleRate, tapping every
// buffer the driver pulls.
func NewPlayer(sampleRate int, src io.Reader, tap Tap) (*Player, error) {
	ctx, err := SharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewTapReader(src, tap)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play() { p.player.Play() }

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
