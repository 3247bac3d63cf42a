// Package signal turns audio input into the small set of reactive scalars
// that drive the particle visualization.
//
// Two interchangeable sources exist: Live, which analyses a capture device,
// and Ambient, a deterministic stand-in used when no device is available.
// Both return State values in the same numeric ranges so consumers cannot
// tell them apart.
package signal

// State is the per-tick output of a Source.
//
// Low, Mid, High and Total change continuously from tick to tick. Volume is
// the raw instantaneous mean level in [0,1] and is never smoothed.
type State struct {
	Low    float64
	Mid    float64
	High   float64
	Total  float64
	Volume float64
}

// Source produces a State once per tick.
//
// Update is called serially from the frame loop with the elapsed time in
// seconds since the previous tick. Dispose releases any resources and may be
// called more than once.
type Source interface {
	Update(dt float64) State
	Dispose()
}

// Kind names for display text.
const (
	KindLive    = "live"
	KindAmbient = "ambient"
)

// Kind reports which variant src is. It exists for status text only; the
// pipeline itself never branches on it.
func Kind(src Source) string {
	switch src.(type) {
	case *Live:
		return KindLive
	case *Ambient:
		return KindAmbient
	default:
		return ""
	}
}
