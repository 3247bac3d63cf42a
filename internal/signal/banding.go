package signal

// Smoothing and scaling constants for live analysis. The scale factors keep
// banded means, which are naturally small, in a usable visual range without
// per-device calibration.
const (
	Alpha      = 0.1
	TotalScale = 4.0
	BandScale  = 2.0
)

// Span is a half-open index range [Lo, Hi).
type Span struct {
	Lo, Hi int
}

// Len returns the number of indices in the span.
func (s Span) Len() int { return s.Hi - s.Lo }

// Bands splits n samples into three contiguous, non-overlapping ranges with
// boundaries at n/3 and 2n/3 (integer floor).
func Bands(n int) (low, mid, high Span) {
	if n < 0 {
		n = 0
	}
	a := n / 3
	b := 2 * n / 3
	return Span{0, a}, Span{a, b}, Span{b, n}
}

// Means holds per-band mean magnitudes of one snapshot, each in [0,1].
type Means struct {
	Low, Mid, High, Total float64
}

// Reduce computes the mean normalized magnitude of snapshot overall and per
// band. Empty bands have a mean of zero.
func Reduce(snapshot []byte) Means {
	n := len(snapshot)
	if n == 0 {
		return Means{}
	}
	low, mid, high := Bands(n)
	var sums [3]float64
	total := 0.0
	for i, b := range snapshot {
		v := float64(b) / 255.0
		total += v
		switch {
		case i < low.Hi:
			sums[0] += v
		case i < mid.Hi:
			sums[1] += v
		default:
			sums[2] += v
		}
	}
	return Means{
		Low:   mean(sums[0], low.Len()),
		Mid:   mean(sums[1], mid.Len()),
		High:  mean(sums[2], high.Len()),
		Total: total / float64(n),
	}
}

func mean(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum / float64(n)
}

// Targets returns the scaled values the smoothed scalars move toward.
func (m Means) Targets() State {
	return State{
		Low:   m.Low * BandScale,
		Mid:   m.Mid * BandScale,
		High:  m.High * BandScale,
		Total: m.Total * TotalScale,
	}
}

// Lerp moves current toward target by the fraction t.
func Lerp(current, target, t float64) float64 {
	return current + t*(target-current)
}

// approach moves the four smoothed scalars of s toward target by alpha.
// Volume is left untouched.
func (s *State) approach(target State, alpha float64) {
	s.Low = Lerp(s.Low, target.Low, alpha)
	s.Mid = Lerp(s.Mid, target.Mid, alpha)
	s.High = Lerp(s.High, target.High, alpha)
	s.Total = Lerp(s.Total, target.Total, alpha)
}
