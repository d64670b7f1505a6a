package laptimer

import (
	"testing"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/types"
)

// feed pushes a crossing sequence (approach then depart) of the given point
// at the given times into the timer, driving UpdatePositionAndTime for each.
func feed(t *Timer, point types.Position, times []string) {
	offsets := []types.Position{
		{Latitude: point.Latitude + 0.0004, Longitude: point.Longitude},
		{Latitude: point.Latitude + 0.0002, Longitude: point.Longitude},
		{Latitude: point.Latitude + 0.0001, Longitude: point.Longitude},
		{Latitude: point.Latitude + 0.0003, Longitude: point.Longitude},
	}
	for i, ts := range times {
		ts2, _ := types.ParseTimestamp(ts)
		t.UpdatePositionAndTime(types.GpsFix{Position: offsets[i%4], Time: ts2})
	}
}

func TestLaptimerNoSectionsStartAndFinish(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	finish := types.Position{Latitude: 49.0, Longitude: 8.0}
	track := types.NewTrackData("Oval", types.Position{}, finish, nil)

	timer := New(loop)
	timer.SetTrack(track)

	var started, finished int
	timer.LapStarted.Connect(func(struct{}) { started++ })
	timer.LapFinished.Connect(func(struct{}) { finished++ })

	feed(timer, finish, []string{"00:00:00.000", "00:00:01.000", "00:00:02.000", "00:00:03.000"})
	if started != 1 {
		t.Fatalf("started = %d, want 1 after first crossing", started)
	}
	if timer.State() != WaitingForFinish {
		t.Fatalf("State() = %v, want WaitingForFinish", timer.State())
	}

	feed(timer, finish, []string{"00:01:00.000", "00:01:01.000", "00:01:02.000", "00:01:03.000"})
	if finished != 1 {
		t.Fatalf("finished = %d, want 1 after second crossing", finished)
	}
	if started != 2 {
		t.Fatalf("started = %d, want 2 (finish re-emits LapStarted for a circuit)", started)
	}
}

func TestLaptimerFewerThanFourFixesNoOp(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	timer := New(loop)
	timer.SetTrack(types.NewTrackData("Oval", types.Position{}, types.Position{Latitude: 1, Longitude: 1}, nil))

	ts, _ := types.ParseTimestamp("00:00:00.000")
	timer.UpdatePositionAndTime(types.GpsFix{Position: types.Position{Latitude: 1, Longitude: 1}, Time: ts})

	if timer.State() != WaitingForFirstStart {
		t.Errorf("State() = %v, want WaitingForFirstStart with <4 buffered fixes", timer.State())
	}
}
