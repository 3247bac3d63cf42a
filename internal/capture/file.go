package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/sirupsen/logrus"

	intaudio "github.com/cbegin/rays-go/internal/audio"
)

// ErrUnsupportedFormat is returned for files that are neither mp3 nor wav.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

type decodedStream interface {
	io.Reader
	SampleRate() int
}

// File plays an audio file and exposes what is currently audible as its
// capture signal, so a recording can stand in for a live microphone.
type File struct {
	mu     sync.Mutex
	path   string
	loop   bool
	ring   *Ring
	file   *os.File
	player *intaudio.Player
	rate   int
	closed bool
}

// NewFile returns an unopened file device. When loop is set the file
// restarts from the beginning at EOF.
func NewFile(path string, loop bool) *File {
	return &File{path: path, loop: loop, ring: NewRing(DefaultRingLen)}
}

// Open decodes the file header and starts playback. The device name is the
// file's base name.
func (f *File) Open(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", ErrClosed
	}
	if f.player != nil {
		return filepath.Base(f.path), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return "", ClassifyError(fmt.Errorf("open %q: %w", f.path, err))
	}
	stream, err := decode(f.path, fh)
	if err != nil {
		_ = fh.Close()
		return "", err
	}
	var src io.Reader = stream
	if f.loop {
		if rs, ok := stream.(io.ReadSeeker); ok {
			src = &loopReader{rs: rs}
		}
	}
	player, err := intaudio.NewPlayer(stream.SampleRate(), src, f.ring.WriteStereo)
	if err != nil {
		_ = fh.Close()
		return "", fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	f.file = fh
	f.player = player
	f.rate = stream.SampleRate()
	f.player.Play()

	logrus.WithFields(logrus.Fields{
		"function":    "File.Open",
		"path":        f.path,
		"sample_rate": f.rate,
		"loop":        f.loop,
	}).Info("File playback started")
	return filepath.Base(f.path), nil
}

func decode(path string, r io.Reader) (decodedStream, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, err := mp3.DecodeF32(r)
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		return s, nil
	case ".wav":
		s, err := wav.DecodeF32(r)
		if err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Latest copies the samples the listener is hearing now. The driver pulls
// ahead of the speaker, so the read is shifted back by the difference
// between tapped and played sample counts.
func (f *File) Latest(dst []float32) int {
	f.mu.Lock()
	player := f.player
	rate := f.rate
	f.mu.Unlock()
	if player == nil {
		return f.ring.Latest(dst)
	}
	played := int64(player.Position().Seconds() * float64(rate))
	delay := int(f.ring.Written() - played)
	return f.ring.LatestBefore(dst, delay)
}

// Close stops playback and closes the file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.player == nil {
		return nil
	}
	err := f.player.Stop()
	if cerr := f.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	f.player = nil
	f.file = nil
	return err
}

// loopReader rewinds rs at EOF.
type loopReader struct {
	rs io.ReadSeeker
}

func (l *loopReader) Read(p []byte) (int, error) {
	n, err := l.rs.Read(p)
	if err == io.EOF {
		if _, serr := l.rs.Seek(0, io.SeekStart); serr != nil {
			return n, serr
		}
		if n == 0 {
			return l.rs.Read(p)
		}
		return n, nil
	}
	return n, err
}
