// Package scheduler decides which display refreshes run a full
// update-and-render when the visualization is capped below refresh rate.
package scheduler

import "fmt"

// Target rates.
const (
	FPSNormal  = 60
	FPSBattery = 30
)

// Tiers lists the selectable target rates by index.
var Tiers = []int{FPSNormal, FPSBattery}

// TierFPS returns the target rate for a tier index.
func TierFPS(index int) (int, error) {
	if index < 0 || index >= len(Tiers) {
		return 0, fmt.Errorf("fps tier %d out of range [0,%d)", index, len(Tiers))
	}
	return Tiers[index], nil
}

// Throttle accepts at most one frame per 1000/target milliseconds. It owns
// no loop; the caller passes a monotonically increasing timestamp per
// refresh.
type Throttle struct {
	target       int
	lastAccepted float64
	primed       bool
}

// NewThrottle returns a throttle for targetFPS. Non-positive rates fall back
// to FPSNormal.
func NewThrottle(targetFPS int) *Throttle {
	t := &Throttle{}
	t.SetTarget(targetFPS)
	return t
}

// SetTarget changes the target rate. The last accepted timestamp is kept.
func (t *Throttle) SetTarget(targetFPS int) {
	if targetFPS <= 0 {
		targetFPS = FPSNormal
	}
	t.target = targetFPS
}

// Target returns the current target rate.
func (t *Throttle) Target() int { return t.target }

// MinInterval returns the minimum spacing between accepted frames in
// milliseconds.
func (t *Throttle) MinInterval() float64 {
	return 1000.0 / float64(t.target)
}

// Accept reports whether the refresh at timestampMs should run. The first
// call is always accepted. A skipped call leaves the last accepted timestamp
// unchanged.
func (t *Throttle) Accept(timestampMs float64) bool {
	if t.primed && timestampMs-t.lastAccepted < t.MinInterval() {
		return false
	}
	t.primed = true
	t.lastAccepted = timestampMs
	return true
}

// LastAccepted returns the timestamp of the most recent accepted frame.
func (t *Throttle) LastAccepted() float64 { return t.lastAccepted }

// Reset forgets the last accepted frame so the next call is accepted.
func (t *Throttle) Reset() {
	t.primed = false
	t.lastAccepted = 0
}
