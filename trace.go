package rays

import (
	"fmt"
	"io"

	"github.com/cbegin/rays-go/internal/signal"
)

// RenderTrace feeds deltas to src in order and returns the resulting states.
func RenderTrace(src signal.Source, deltas []float64) []signal.State {
	out := make([]signal.State, len(deltas))
	for i, dt := range deltas {
		out[i] = src.Update(dt)
	}
	return out
}

// UniformDeltas returns n copies of dt.
func UniformDeltas(n int, dt float64) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = dt
	}
	return out
}

// WriteTrace writes states as whitespace-separated columns with a header.
func WriteTrace(w io.Writer, states []signal.State) error {
	if _, err := fmt.Fprintln(w, "frame\tlow\tmid\thigh\ttotal\tvolume"); err != nil {
		return err
	}
	for i, s := range states {
		if _, err := fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\n",
			i, s.Low, s.Mid, s.High, s.Total, s.Volume); err != nil {
			return err
		}
	}
	return nil
}
