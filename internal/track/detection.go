// Package track implements finish-line-radius track detection: given a
// position, which known circuit (if any) are we at.
package track

import (
	"github.com/mFlorianW/rapid/internal/geo"
	"github.com/mFlorianW/rapid/internal/types"
)

// DefaultRadius is the detection radius used when a Detector is constructed
// with no explicit override.
const DefaultRadius = 500

// Detector matches a position against a track's finish line within a fixed
// radius. No sector geometry is considered at this stage.
type Detector struct {
	radiusMeters float64
}

// NewDetector constructs a Detector using radiusMeters. Passing 0 selects
// DefaultRadius.
func NewDetector(radiusMeters float64) *Detector {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadius
	}
	return &Detector{radiusMeters: radiusMeters}
}

// IsOnTrack reports whether position is within the detector's radius of
// track's finish line.
func (d *Detector) IsOnTrack(t types.TrackData, position types.Position) bool {
	return geo.Distance(t.Finishline, position) <= d.radiusMeters
}

// Detect returns the first track in tracks that position matches, and true.
// If none match it returns the zero TrackData and false.
func (d *Detector) Detect(tracks []types.TrackData, position types.Position) (types.TrackData, bool) {
	for _, t := range tracks {
		if d.IsOnTrack(t, position) {
			return t, true
		}
	}
	return types.TrackData{}, false
}
