package capture

import (
	"context"
	"sync/atomic"
)

// Silence is a device that always opens and always reads zeros.
type Silence struct {
	Name   string
	closed atomic.Bool
}

// Open returns s.Name.
func (s *Silence) Open(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.closed.Load() {
		return "", ErrClosed
	}
	return s.Name, nil
}

// Latest zeroes dst.
func (s *Silence) Latest(dst []float32) int {
	for i := range dst {
		dst[i] = 0
	}
	return len(dst)
}

// Close marks the device closed.
func (s *Silence) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (s *Silence) Closed() bool { return s.closed.Load() }
