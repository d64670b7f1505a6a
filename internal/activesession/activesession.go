// Package activesession drives one active lap-timing session: it wires a
// GPS source into the lap timer, tracks which lap is currently "open", and
// persists each finished lap. Grounded line-for-line on
// ActiveSessionWorkflow.cpp/.hpp and IActiveSessionWorkflow.hpp.
package activesession

import (
	"github.com/mFlorianW/rapid/internal/async"
	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/laptimer"
	"github.com/mFlorianW/rapid/internal/positioning"
	"github.com/mFlorianW/rapid/internal/rlog"
	"github.com/mFlorianW/rapid/internal/types"
)

var sessionLog = rlog.For("activesession")

// SessionStore is the subset of storage.SessionDatabase the workflow needs:
// persisting a session (which updates-in-place on matching date/time).
type SessionStore interface {
	StoreSession(session types.SessionData) *async.Result
}

// Workflow is the active-session workflow: start it once a track is armed
// and a GPS source is live, and it keeps the in-memory session, the lap
// timer, and the database in lockstep as laps complete.
type Workflow struct {
	loop  *eventloop.Loop
	gps   positioning.GpsPositionProvider
	timer *laptimer.Timer
	store SessionStore

	track types.TrackData

	session    *types.SessionData
	currentLap types.LapData
	lapActive  bool

	disconnectFns []func()

	lapCount          *eventloop.Property[uint64]
	currentLaptime    *eventloop.Property[types.Timestamp]
	currentSectorTime *eventloop.Property[types.Timestamp]
	lastLaptime       types.Timestamp
	lastSectorTime    types.Timestamp

	LapFinished    eventloop.VoidSignal
	SectorFinished eventloop.VoidSignal
}

// New constructs a Workflow over the given GPS source, lap timer, and
// session store, all owned by loop.
func New(loop *eventloop.Loop, gps positioning.GpsPositionProvider, timer *laptimer.Timer, store SessionStore) *Workflow {
	return &Workflow{
		loop:              loop,
		gps:               gps,
		timer:             timer,
		store:             store,
		lapCount:          eventloop.NewProperty[uint64](loop, 0),
		currentLaptime:    eventloop.NewProperty[types.Timestamp](loop, types.Timestamp{}),
		currentSectorTime: eventloop.NewProperty[types.Timestamp](loop, types.Timestamp{}),
	}
}

// SetTrack arms the track used the next time StartActiveSession runs.
func (w *Workflow) SetTrack(track types.TrackData) {
	w.track = track
}

// GetTrack returns the currently armed track.
func (w *Workflow) GetTrack() types.TrackData {
	return w.track
}

// GetSession returns the in-memory session being built, if a session is
// active.
func (w *Workflow) GetSession() (types.SessionData, bool) {
	if w.session == nil {
		return types.SessionData{}, false
	}
	return *w.session, true
}

// LapCount returns the live completed-lap-count property.
func (w *Workflow) LapCount() *eventloop.Property[uint64] {
	return w.lapCount
}

// CurrentLaptime mirrors the lap timer's live current-lap-time property.
func (w *Workflow) CurrentLaptime() *eventloop.Property[types.Timestamp] {
	return w.currentLaptime
}

// CurrentSectorTime mirrors the lap timer's live current-sector-time property.
func (w *Workflow) CurrentSectorTime() *eventloop.Property[types.Timestamp] {
	return w.currentSectorTime
}

// LastLaptime returns the most recently completed lap's total time.
func (w *Workflow) LastLaptime() types.Timestamp {
	return w.lastLaptime
}

// LastSectorTime returns the most recently completed sector's time.
func (w *Workflow) LastSectorTime() types.Timestamp {
	return w.lastSectorTime
}

// StartActiveSession arms the lap timer with the current track, snapshots a
// fresh in-memory session using the GPS source's current fix as the
// session's date/time, and starts forwarding GPS updates into the timer.
func (w *Workflow) StartActiveSession() {
	w.timer.SetTrack(w.track)

	fix := w.gps.GpsPosition().Get()
	session := types.NewSessionData(w.track, fix.Date, fix.Time)
	w.session = &session
	w.currentLap = types.LapData{}
	w.lapActive = false
	w.lapCount.Set(0)

	w.connect(w.timer.LapStarted.Connect(func(struct{}) {
		w.lapActive = true
	}))
	w.connect(w.timer.SectorFinished.Connect(func(struct{}) {
		w.onSectorFinished()
	}))
	w.connect(w.timer.LapFinished.Connect(func(struct{}) {
		w.onLapFinished()
	}))
	w.connect(w.timer.CurrentLaptime().Changed().Connect(func(t types.Timestamp) {
		w.currentLaptime.Set(t)
	}))
	w.connect(w.timer.CurrentSectorTime().Changed().Connect(func(t types.Timestamp) {
		w.currentSectorTime.Set(t)
	}))
	w.connect(w.gps.GpsPosition().Changed().Connect(func(fix types.GpsFix) {
		w.onGpsPosition(fix)
	}))
}

// StopActiveSession disconnects from the GPS source and the lap timer and
// drops the in-memory session.
func (w *Workflow) StopActiveSession() {
	for _, disconnect := range w.disconnectFns {
		disconnect()
	}
	w.disconnectFns = nil
	w.session = nil
}

func (w *Workflow) connect(disconnect func()) {
	w.disconnectFns = append(w.disconnectFns, disconnect)
}

func (w *Workflow) onGpsPosition(fix types.GpsFix) {
	w.timer.UpdatePositionAndTime(fix)
	if w.lapActive {
		w.currentLap.AddPosition(fix)
	}
}

func (w *Workflow) onSectorFinished() {
	w.addSectorTime()
	eventloop.EmitVoid(&w.SectorFinished)
}

func (w *Workflow) onLapFinished() {
	if w.session == nil {
		sessionLog.Warn("lapFinished received with no active session")
		return
	}

	w.addSectorTime()
	w.session.AddLap(w.currentLap)

	result := w.store.StoreSession(*w.session)
	result.WaitForFinished()
	if result.GetResult() != async.Ok {
		sessionLog.WithField("error", result.GetErrorMessage()).Warn("failed to store session after lap finish")
	}

	w.lastLaptime = w.timer.LastLaptime()
	w.currentLap = types.LapData{}
	w.lapActive = false
	w.lapCount.Set(w.lapCount.Get() + 1)

	eventloop.EmitVoid(&w.LapFinished)
}

func (w *Workflow) addSectorTime() {
	sectorTime := w.timer.LastSectorTime()
	w.lastSectorTime = sectorTime
	w.currentLap.AddSectorTime(sectorTime)
}
