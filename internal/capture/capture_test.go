package capture

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingLatestOrdersOldestFirst(t *testing.T) {
	r := NewRing(8)
	r.Write([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	dst := make([]float32, 4)
	n := r.Latest(dst)
	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{7, 8, 9, 10}, dst)
	assert.Equal(t, int64(10), r.Written())
}

func TestRingLatestBeforeDelay(t *testing.T) {
	r := NewRing(16)
	r.Write([]float32{1, 2, 3, 4, 5, 6})
	dst := make([]float32, 3)
	r.LatestBefore(dst, 2)
	assert.Equal(t, []float32{2, 3, 4}, dst)
}

func TestRingLatestLargerThanCapacity(t *testing.T) {
	r := NewRing(4)
	r.Write([]float32{1, 2, 3, 4})
	dst := []float32{9, 9, 9, 9, 9, 9}
	n := r.Latest(dst)
	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{0, 0, 1, 2, 3, 4}, dst)
}

func TestRingWriteStereoDownmixes(t *testing.T) {
	r := NewRing(4)
	r.WriteStereo([]float32{1, 0, 0.5, 0.5, -1, 1})
	dst := make([]float32, 3)
	r.Latest(dst)
	assert.Equal(t, []float32{0.5, 0.5, 0}, dst)
	assert.Equal(t, int64(3), r.Written())
}

func TestRingReset(t *testing.T) {
	r := NewRing(4)
	r.Write([]float32{1, 2})
	r.Reset()
	dst := make([]float32, 2)
	r.Latest(dst)
	assert.Equal(t, []float32{0, 0}, dst)
	assert.Zero(t, r.Written())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", errors.New("Permission denied by user"), ErrPermissionDenied},
		{"not authorized", errors.New("app is not authorized to record"), ErrPermissionDenied},
		{"invalid device", errors.New("Invalid device"), ErrNoDevice},
		{"unavailable", errors.New("Device unavailable"), ErrNoDevice},
		{"already wrapped", ErrNoDevice, ErrNoDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ClassifyError(tt.err), tt.want)
		})
	}

	other := errors.New("sample format not supported")
	assert.Same(t, other, ClassifyError(other))
	assert.NoError(t, ClassifyError(nil))
}

func TestSilenceDevice(t *testing.T) {
	s := &Silence{Name: "null"}
	name, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "null", name)

	dst := []float32{1, 2, 3}
	assert.Equal(t, 3, s.Latest(dst))
	assert.Equal(t, []float32{0, 0, 0}, dst)

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	_, err = s.Open(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSilenceOpenHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Silence{}).Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileOpenUnsupportedFormat(t *testing.T) {
	path := t.TempDir() + "/clip.flac"
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))
	_, err := NewFile(path, false).Open(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileOpenMissing(t *testing.T) {
	f := NewFile(t.TempDir()+"/missing.mp3", false)
	_, err := f.Open(context.Background())
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
}
