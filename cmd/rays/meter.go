package main

import (
	"fmt"
	"math"
	"strings"

	rays "github.com/cbegin/rays-go"
)

const (
	defaultWidth = 80
	minBarWidth  = 10
)

// meterLine renders one status line no wider than width: a volume bar
// scaled like the on-screen HUD, followed by the band scalars.
func meterLine(f rays.Frame, width int) string {
	s := f.State
	stats := fmt.Sprintf(" %5.1f%% L%.2f M%.2f H%.2f T%.2f", volumePercent(s.Volume), s.Low, s.Mid, s.High, s.Total)
	if f.ShowHint {
		stats += " (silent)"
	}
	barW := width - len(stats) - 2
	if barW < minBarWidth {
		barW = minBarWidth
	}
	filled := int(math.Round(volumePercent(s.Volume) / 100 * float64(barW)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", barW-filled) + "]" + stats
}

func volumePercent(v float64) float64 {
	return math.Max(0, math.Min(100, v*400))
}
