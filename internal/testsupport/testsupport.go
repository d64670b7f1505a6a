// Package testsupport collects fixtures shared across package tests: sample
// tracks and sessions, and small helpers for pumping an eventloop.Loop to a
// condition — the same handful of helpers every component's _test.go
// reimplements on its own (internal/storage's sampleTrack/sampleSession,
// internal/workflow's pumpUntil).
package testsupport

import (
	"testing"
	"time"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/types"
)

// OvalTrack returns a simple one-sector track (no sector splits) with no
// start line of its own, so the finish line doubles as the start line
// (TrackData.EffectiveStartline), suitable for laptimer/activesession tests that only
// care about finish-line crossings.
func OvalTrack(name string, finish types.Position) types.TrackData {
	return types.NewTrackData(name, types.Position{}, finish, nil)
}

// SampleTrack returns a track with a distinct start line, finish line, and
// one sector split, for tests exercising multi-sector behavior.
func SampleTrack(name string) types.TrackData {
	return types.NewTrackData(
		name,
		types.Position{Latitude: 49.1, Longitude: 8.1},
		types.Position{Latitude: 49.0, Longitude: 8.0},
		[]types.Position{
			{Latitude: 49.05, Longitude: 8.05},
		},
	)
}

// SampleSession returns a single-lap session on track, starting at a fixed
// date/time so tests comparing against it don't need their own parsing.
func SampleSession(t *testing.T, track types.TrackData) types.SessionData {
	t.Helper()
	date, err := types.ParseDate("12.06.2026")
	if err != nil {
		t.Fatalf("testsupport: parse date: %v", err)
	}
	start, err := types.ParseTimestamp("14:00:00.000")
	if err != nil {
		t.Fatalf("testsupport: parse timestamp: %v", err)
	}
	session := types.NewSessionData(track, date, start)

	lapTime, err := types.ParseTimestamp("00:01:32.450")
	if err != nil {
		t.Fatalf("testsupport: parse lap timestamp: %v", err)
	}
	lap := types.NewLapData([]types.Timestamp{lapTime})
	lap.AddPosition(types.GpsFix{
		Position: track.Finishline,
		Time:     start,
		Date:     date,
		Velocity: types.NewVelocityFromKMH(120),
	})
	session.AddLap(lap)
	return session
}

// PumpUntil repeatedly pumps loop (WaitOnce followed by ProcessEvents)
// until done returns true or deadline elapses, failing the test otherwise.
// It is the shared shape behind the WaitOnce+ProcessEvents pattern every
// async-driven test needs: a DeferredSignal enqueued during one WaitOnce
// only runs on the following ProcessEvents pass.
func PumpUntil(t *testing.T, loop *eventloop.Loop, deadline time.Duration, done func() bool) {
	t.Helper()
	cutoff := time.Now().Add(deadline)
	for !done() {
		if err := loop.WaitOnce(); err != nil {
			t.Fatalf("testsupport: WaitOnce: %v", err)
		}
		if err := loop.ProcessEvents(); err != nil {
			t.Fatalf("testsupport: ProcessEvents: %v", err)
		}
		if time.Now().After(cutoff) {
			t.Fatal("testsupport: PumpUntil: condition never became true")
		}
	}
}
