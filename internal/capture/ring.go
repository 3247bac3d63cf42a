package capture

import "sync"

// DefaultRingLen holds a little over a second of mono audio at 48 kHz.
const DefaultRingLen = 65536

// Ring is a fixed-size mono history buffer. Writes come from the audio
// thread; reads come from the frame loop.
type Ring struct {
	mu       sync.Mutex
	buf      []float32
	writePos int
	written  int64 // total samples written since Reset
}

// NewRing allocates a ring holding n samples.
func NewRing(n int) *Ring {
	if n <= 0 {
		n = DefaultRingLen
	}
	return &Ring{buf: make([]float32, n)}
}

// Len returns the ring capacity.
func (r *Ring) Len() int { return len(r.buf) }

// Write appends mono samples. Keep it minimal: it runs on the audio thread.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	n := len(r.buf)
	for _, s := range samples {
		r.buf[r.writePos] = s
		r.writePos = (r.writePos + 1) % n
	}
	r.written += int64(len(samples))
	r.mu.Unlock()
}

// WriteStereo downmixes interleaved stereo samples and appends them.
func (r *Ring) WriteStereo(samples []float32) {
	r.mu.Lock()
	n := len(r.buf)
	frames := 0
	for i := 0; i+1 < len(samples); i += 2 {
		r.buf[r.writePos] = (samples[i] + samples[i+1]) * 0.5
		r.writePos = (r.writePos + 1) % n
		frames++
	}
	r.written += int64(frames)
	r.mu.Unlock()
}

// Written returns the number of samples written since the last Reset.
func (r *Ring) Written() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Reset clears the history.
func (r *Ring) Reset() {
	r.mu.Lock()
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.writePos = 0
	r.written = 0
	r.mu.Unlock()
}

// Latest copies the newest len(dst) samples, oldest first.
func (r *Ring) Latest(dst []float32) int {
	return r.LatestBefore(dst, 0)
}

// LatestBefore copies len(dst) samples ending delay samples before the write
// position. It lets a reader align with what a listener hears when the
// writer runs ahead of the speaker.
func (r *Ring) LatestBefore(dst []float32, delay int) int {
	n := len(dst)
	r.mu.Lock()
	defer r.mu.Unlock()
	size := len(r.buf)
	pad := 0
	if n > size {
		pad = n - size
		n = size
	}
	if delay < 0 {
		delay = 0
	}
	if delay > size-n {
		delay = size - n
	}
	for i := 0; i < pad; i++ {
		dst[i] = 0
	}
	start := (r.writePos - delay - n + size*2) % size
	for i := 0; i < n; i++ {
		dst[pad+i] = r.buf[(start+i)%size]
	}
	return n
}
