package positioning

import (
	"testing"
	"time"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/types"
)

func TestConstantGpsPositionProviderEmitsFirstWaypointImmediately(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	waypoints := []types.Position{
		{Latitude: 49.0, Longitude: 8.0},
		{Latitude: 49.001, Longitude: 8.001},
	}
	provider := NewConstantGpsPositionProvider(loop, waypoints)
	provider.SetVelocityInMetersPerSecond(30)

	var got types.GpsFix
	provider.GpsPosition().Changed().Connect(func(fix types.GpsFix) {
		got = fix
	})

	provider.Start()
	defer provider.Stop()

	if err := loop.WaitOnce(); err != nil {
		t.Fatalf("WaitOnce: %v", err)
	}
	if err := loop.ProcessEvents(); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}

	if !got.Position.Equal(waypoints[0]) {
		t.Errorf("first tick position = %+v, want %+v", got.Position, waypoints[0])
	}
}

func TestConstantGpsPositionProviderInterpolatesTowardNextWaypoint(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	waypoints := []types.Position{
		{Latitude: 49.0, Longitude: 8.0},
		{Latitude: 49.01, Longitude: 8.0},
	}
	provider := NewConstantGpsPositionProvider(loop, waypoints)
	provider.SetVelocityInMetersPerSecond(50)
	provider.Start()
	defer provider.Stop()

	var ticks []types.GpsFix
	provider.GpsPosition().Changed().Connect(func(fix types.GpsFix) {
		ticks = append(ticks, fix)
	})

	deadline := time.Now().Add(500 * time.Millisecond)
	for len(ticks) < 3 && time.Now().Before(deadline) {
		if err := loop.WaitOnce(); err != nil {
			t.Fatalf("WaitOnce: %v", err)
		}
		if err := loop.ProcessEvents(); err != nil {
			t.Fatalf("ProcessEvents: %v", err)
		}
	}

	if len(ticks) < 3 {
		t.Fatalf("got %d ticks, want at least 3", len(ticks))
	}
	if ticks[1].Position.Latitude <= ticks[0].Position.Latitude {
		t.Errorf("position did not move toward the next waypoint: %+v -> %+v", ticks[0].Position, ticks[1].Position)
	}
}
