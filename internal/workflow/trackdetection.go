// Package workflow hosts the two higher-level workflows built on top of the
// core engine: detecting which known track a live GPS fix is on, and
// managing REST-downloaded session data. Grounded on
// TrackDetectionWorkflow.cpp/.hpp and RestSessionManagementWorkflow.cpp/.hpp.
package workflow

import (
	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/positioning"
	"github.com/mFlorianW/rapid/internal/rlog"
	"github.com/mFlorianW/rapid/internal/track"
	"github.com/mFlorianW/rapid/internal/types"
)

var trackDetectionLog = rlog.For("workflow.trackdetection")

// TrackDetectionWorkflow watches a live GPS source against a fixed list of
// candidate tracks and reports the first one the fix falls within radius
// of. It does not stop itself on a match — callers observe TrackDetected
// and decide whether to keep running.
type TrackDetectionWorkflow struct {
	gps      positioning.GpsPositionProvider
	detector *track.Detector
	tracks   []types.TrackData

	active      bool
	disconnect  func()
	detected    types.TrackData
	hasDetected bool

	// TrackDetected fires for every GPS fix received while active that
	// matches a candidate track, carrying the first matching candidate.
	TrackDetected eventloop.Signal[types.TrackData]
}

// NewTrackDetectionWorkflow constructs a workflow over gps, matching against
// tracks using detector.
func NewTrackDetectionWorkflow(gps positioning.GpsPositionProvider, detector *track.Detector, tracks []types.TrackData) *TrackDetectionWorkflow {
	return &TrackDetectionWorkflow{
		gps:      gps,
		detector: detector,
		tracks:   tracks,
	}
}

// SetTracksToDetect replaces the candidate track list used by future GPS
// updates.
func (w *TrackDetectionWorkflow) SetTracksToDetect(tracks []types.TrackData) {
	w.tracks = tracks
}

// DetectedTrack returns the most recently detected track, if any.
func (w *TrackDetectionWorkflow) DetectedTrack() (types.TrackData, bool) {
	return w.detected, w.hasDetected
}

// StartDetection begins watching GpsPosition updates. Calling it again
// while already active is a no-op.
func (w *TrackDetectionWorkflow) StartDetection() {
	if w.active {
		return
	}
	w.active = true
	w.hasDetected = false
	w.disconnect = w.gps.GpsPosition().Changed().Connect(func(fix types.GpsFix) {
		w.onPositionReceived(fix)
	})
}

// StopDetection stops watching GPS updates.
func (w *TrackDetectionWorkflow) StopDetection() {
	if !w.active {
		return
	}
	w.active = false
	if w.disconnect != nil {
		w.disconnect()
		w.disconnect = nil
	}
}

func (w *TrackDetectionWorkflow) onPositionReceived(fix types.GpsFix) {
	if !w.active {
		return
	}
	for _, t := range w.tracks {
		if w.detector.IsOnTrack(t, fix.Position) {
			w.detected = t
			w.hasDetected = true
			trackDetectionLog.WithField("track", t.Name).Debug("track detected")
			w.TrackDetected.Emit(t)
			break
		}
	}
}
