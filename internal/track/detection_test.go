package track

import (
	"testing"

	"github.com/mFlorianW/rapid/internal/types"
)

func TestDetectorIsOnTrackWithinRadius(t *testing.T) {
	t.Parallel()

	d := NewDetector(DefaultRadius)
	tr := types.NewTrackData("Hockenheim", types.Position{}, types.Position{Latitude: 49.3278, Longitude: 8.5656}, nil)

	near := types.Position{Latitude: 49.3279, Longitude: 8.5657}
	if !d.IsOnTrack(tr, near) {
		t.Error("expected nearby position to match within default radius")
	}
}

func TestDetectorIsOnTrackOutsideRadius(t *testing.T) {
	t.Parallel()

	d := NewDetector(DefaultRadius)
	tr := types.NewTrackData("Hockenheim", types.Position{}, types.Position{Latitude: 49.3278, Longitude: 8.5656}, nil)

	far := types.Position{Latitude: 51.0, Longitude: 10.0}
	if d.IsOnTrack(tr, far) {
		t.Error("expected far-away position to not match")
	}
}

func TestDetectorDefaultRadiusFallback(t *testing.T) {
	t.Parallel()

	d := NewDetector(0)
	if d.radiusMeters != DefaultRadius {
		t.Errorf("radiusMeters = %v, want %v", d.radiusMeters, DefaultRadius)
	}
}

func TestDetectorDetectFirstMatch(t *testing.T) {
	t.Parallel()

	d := NewDetector(DefaultRadius)
	a := types.NewTrackData("A", types.Position{}, types.Position{Latitude: 1, Longitude: 1}, nil)
	b := types.NewTrackData("B", types.Position{}, types.Position{Latitude: 49.3278, Longitude: 8.5656}, nil)

	match, ok := d.Detect([]types.TrackData{a, b}, types.Position{Latitude: 49.3279, Longitude: 8.5657})
	if !ok || match.Name != "B" {
		t.Errorf("Detect() = %+v, %v; want track B, true", match, ok)
	}
}
