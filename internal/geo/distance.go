// Package geo implements the flat-earth distance approximation and the
// passed-point crossing predicate the lap timer and track detector build on.
// Both are only accurate over the 1-2km scale of a single circuit; they are
// not general-purpose geodesy.
package geo

import (
	"math"

	"github.com/mFlorianW/rapid/internal/types"
)

// Distance returns the approximate distance in meters between two positions,
// using an equirectangular projection centered on their average latitude.
// Accurate for the short distances (a few kilometers) a track layout spans.
func Distance(a, b types.Position) float64 {
	lat := float64(a.Latitude+b.Latitude) / 2 * math.Pi / 180
	dx := 111300 * math.Cos(lat) * float64(a.Longitude-b.Longitude)
	dy := 111300 * float64(a.Latitude-b.Latitude)
	return math.Sqrt(dx*dx + dy*dy)
}
