package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/track"
	"github.com/mFlorianW/rapid/internal/types"
	"github.com/mFlorianW/rapid/internal/workflow"
)

type fakeGpsSource struct {
	position *eventloop.Property[types.GpsFix]
}

func newFakeGpsSource(loop *eventloop.Loop, initial types.GpsFix) *fakeGpsSource {
	return &fakeGpsSource{position: eventloop.NewProperty(loop, initial)}
}

func (f *fakeGpsSource) GpsPosition() *eventloop.Property[types.GpsFix] {
	return f.position
}

func TestTrackDetectionWorkflowDetectsFirstMatchingTrack(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	nearby := types.Position{Latitude: 49.0, Longitude: 8.0}
	faraway := types.Position{Latitude: 10.0, Longitude: 10.0}
	near := types.NewTrackData("Near", types.Position{}, nearby, nil)
	far := types.NewTrackData("Far", types.Position{}, faraway, nil)

	gps := newFakeGpsSource(loop, types.GpsFix{})
	wf := workflow.NewTrackDetectionWorkflow(gps, track.NewDetector(500), []types.TrackData{far, near})

	var detected []types.TrackData
	wf.TrackDetected.Connect(func(t types.TrackData) { detected = append(detected, t) })

	wf.StartDetection()
	gps.position.Set(types.GpsFix{Position: nearby})
	require.NoError(t, loop.ProcessEvents())

	require.Len(t, detected, 1)
	require.Equal(t, "Near", detected[0].Name)
	got, ok := wf.DetectedTrack()
	require.True(t, ok)
	require.Equal(t, "Near", got.Name)
}

func TestTrackDetectionWorkflowIgnoresUpdatesAfterStop(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	finish := types.Position{Latitude: 49.0, Longitude: 8.0}
	trackData := types.NewTrackData("Oval", types.Position{}, finish, nil)

	gps := newFakeGpsSource(loop, types.GpsFix{})
	wf := workflow.NewTrackDetectionWorkflow(gps, track.NewDetector(500), []types.TrackData{trackData})

	var detectedCount int
	wf.TrackDetected.Connect(func(types.TrackData) { detectedCount++ })

	wf.StartDetection()
	wf.StopDetection()
	gps.position.Set(types.GpsFix{Position: finish})
	require.NoError(t, loop.ProcessEvents())

	require.Equal(t, 0, detectedCount)
}
