package activesession

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mFlorianW/rapid/internal/async"
	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/laptimer"
	"github.com/mFlorianW/rapid/internal/types"
)

// fakeGpsSource is a manually-driven positioning.GpsPositionProvider double.
type fakeGpsSource struct {
	position *eventloop.Property[types.GpsFix]
}

func newFakeGpsSource(loop *eventloop.Loop, initial types.GpsFix) *fakeGpsSource {
	return &fakeGpsSource{position: eventloop.NewProperty(loop, initial)}
}

func (f *fakeGpsSource) GpsPosition() *eventloop.Property[types.GpsFix] {
	return f.position
}

// fakeStore records every session passed to StoreSession and completes
// synchronously with Ok.
type fakeStore struct {
	loop   *eventloop.Loop
	stored []types.SessionData
}

func (f *fakeStore) StoreSession(session types.SessionData) *async.Result {
	f.stored = append(f.stored, session)
	result := async.NewResult(f.loop)
	result.SetResult(async.Ok)
	return result
}

func ovalTrack(finish types.Position) types.TrackData {
	return types.NewTrackData("Oval", types.Position{}, finish, nil)
}

// feedFix drives one crossing sequence (approach then depart) of point,
// pushing one GpsFix per timestamp through the GPS source.
func feedFix(t *testing.T, loop *eventloop.Loop, gps *fakeGpsSource, point types.Position, date types.Date, times []string) {
	t.Helper()
	offsets := []types.Position{
		{Latitude: point.Latitude + 0.0004, Longitude: point.Longitude},
		{Latitude: point.Latitude + 0.0002, Longitude: point.Longitude},
		{Latitude: point.Latitude + 0.0001, Longitude: point.Longitude},
		{Latitude: point.Latitude + 0.0003, Longitude: point.Longitude},
	}
	for i, ts := range times {
		ts2, err := types.ParseTimestamp(ts)
		require.NoError(t, err)
		gps.position.Set(types.GpsFix{Position: offsets[i%4], Time: ts2, Date: date})
		require.NoError(t, loop.ProcessEvents())
	}
}

func TestActiveSessionWorkflowStartSnapshotsSessionFromCurrentFix(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	date, err := types.ParseDate("01.05.2026")
	require.NoError(t, err)
	startTime, err := types.ParseTimestamp("10:00:00.000")
	require.NoError(t, err)
	finish := types.Position{Latitude: 49.0, Longitude: 8.0}

	gps := newFakeGpsSource(loop, types.GpsFix{Position: finish, Time: startTime, Date: date})
	timer := laptimer.New(loop)
	store := &fakeStore{loop: loop}

	wf := New(loop, gps, timer, store)
	wf.SetTrack(ovalTrack(finish))
	wf.StartActiveSession()
	defer wf.StopActiveSession()

	session, ok := wf.GetSession()
	require.True(t, ok, "GetSession() after StartActiveSession")
	require.True(t, session.Date.Equal(date))
	require.True(t, session.Time.Equal(startTime))
	require.EqualValues(t, 0, wf.LapCount().Get())
}

func TestActiveSessionWorkflowLapFinishedStoresSessionAndIncrementsCount(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	date, err := types.ParseDate("01.05.2026")
	require.NoError(t, err)
	startTime, err := types.ParseTimestamp("10:00:00.000")
	require.NoError(t, err)
	finish := types.Position{Latitude: 49.0, Longitude: 8.0}

	gps := newFakeGpsSource(loop, types.GpsFix{Position: finish, Time: startTime, Date: date})
	timer := laptimer.New(loop)
	store := &fakeStore{loop: loop}

	wf := New(loop, gps, timer, store)
	wf.SetTrack(ovalTrack(finish))
	wf.StartActiveSession()
	defer wf.StopActiveSession()

	var lapFinished int
	wf.LapFinished.Connect(func(struct{}) { lapFinished++ })

	feedFix(t, loop, gps, finish, date, []string{"10:00:00.000", "10:00:01.000", "10:00:02.000", "10:00:03.000"})
	feedFix(t, loop, gps, finish, date, []string{"10:01:00.000", "10:01:01.000", "10:01:02.000", "10:01:03.000"})

	require.Equal(t, 1, lapFinished)
	require.EqualValues(t, 1, wf.LapCount().Get())
	require.NotEmpty(t, store.stored)
	require.Equal(t, 1, store.stored[len(store.stored)-1].NumberOfLaps())
}

func TestActiveSessionWorkflowPositionOnlyAppendedAfterLapStarted(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	date, err := types.ParseDate("01.05.2026")
	require.NoError(t, err)
	startTime, err := types.ParseTimestamp("10:00:00.000")
	require.NoError(t, err)
	finish := types.Position{Latitude: 49.0, Longitude: 8.0}

	gps := newFakeGpsSource(loop, types.GpsFix{Position: finish, Time: startTime, Date: date})
	timer := laptimer.New(loop)
	store := &fakeStore{loop: loop}

	wf := New(loop, gps, timer, store)
	wf.SetTrack(ovalTrack(finish))
	wf.StartActiveSession()
	defer wf.StopActiveSession()

	// Fewer than four fixes: the timer hasn't buffered enough to evaluate a
	// crossing yet, so no lap is open and positions must not accumulate.
	feedFix(t, loop, gps, finish, date, []string{"10:00:00.000", "10:00:01.000"})
	require.Empty(t, wf.currentLap.Positions())
}

func TestActiveSessionWorkflowStopDisconnectsGpsSource(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	date, err := types.ParseDate("01.05.2026")
	require.NoError(t, err)
	startTime, err := types.ParseTimestamp("10:00:00.000")
	require.NoError(t, err)
	finish := types.Position{Latitude: 49.0, Longitude: 8.0}

	gps := newFakeGpsSource(loop, types.GpsFix{Position: finish, Time: startTime, Date: date})
	timer := laptimer.New(loop)
	store := &fakeStore{loop: loop}

	wf := New(loop, gps, timer, store)
	wf.SetTrack(ovalTrack(finish))
	wf.StartActiveSession()
	wf.StopActiveSession()

	_, ok := wf.GetSession()
	require.False(t, ok, "GetSession() after StopActiveSession")

	gps.position.Set(types.GpsFix{Position: finish, Time: startTime, Date: date})
	require.NoError(t, loop.ProcessEvents())
	// No assertion needed beyond not panicking: the workflow must not touch
	// the timer or session after Stop even though the GPS source is still live.
}
