// Package laptimer implements the lap-timer state machine: given a track
// and a stream of GPS fixes, it detects start/sector/finish line crossings
// and emits LapStarted/SectorFinished/LapFinished.
package laptimer

import (
	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/geo"
	"github.com/mFlorianW/rapid/internal/types"
)

// State is one of the three lap-timer states.
type State int

const (
	// WaitingForFirstStart is the initial state: no lap has started yet.
	WaitingForFirstStart State = iota
	// IteratingTrackPoints is active while the track has unfinished sectors.
	IteratingTrackPoints
	// WaitingForFinish is active once all sectors are done, waiting for the finish line.
	WaitingForFinish
)

func (s State) String() string {
	switch s {
	case IteratingTrackPoints:
		return "IteratingTrackPoints"
	case WaitingForFinish:
		return "WaitingForFinish"
	default:
		return "WaitingForFirstStart"
	}
}

// Timer is the lap-timer state machine described in spec §4.G.
type Timer struct {
	track             types.TrackData
	last4             *types.RingBuffer[types.Position]
	state             State
	currentSectionIdx int

	lapStartedAt    types.Timestamp
	sectorStartedAt types.Timestamp
	lastLaptime     types.Timestamp
	lastSectorTime  types.Timestamp

	currentLaptime    *eventloop.Property[types.Timestamp]
	currentSectorTime *eventloop.Property[types.Timestamp]

	LapStarted     eventloop.VoidSignal
	SectorFinished eventloop.VoidSignal
	LapFinished    eventloop.VoidSignal
}

// New constructs a Timer with no track set, owned by loop (for its
// current-clock Property change notifications).
func New(loop *eventloop.Loop) *Timer {
	return &Timer{
		last4:             types.NewRingBuffer[types.Position](4),
		currentLaptime:    eventloop.NewProperty[types.Timestamp](loop, types.Timestamp{}),
		currentSectorTime: eventloop.NewProperty[types.Timestamp](loop, types.Timestamp{}),
	}
}

// SetTrack installs the track used to calculate sections and lap time.
func (t *Timer) SetTrack(track types.TrackData) {
	t.track = track
}

// CurrentLaptime returns the live current-lap-time property.
func (t *Timer) CurrentLaptime() *eventloop.Property[types.Timestamp] { return t.currentLaptime }

// CurrentSectorTime returns the live current-sector-time property.
func (t *Timer) CurrentSectorTime() *eventloop.Property[types.Timestamp] { return t.currentSectorTime }

// LastLaptime returns the most recently completed lap's total time.
func (t *Timer) LastLaptime() types.Timestamp { return t.lastLaptime }

// LastSectorTime returns the most recently completed sector's time.
func (t *Timer) LastSectorTime() types.Timestamp { return t.lastSectorTime }

// State returns the timer's current state.
func (t *Timer) State() State { return t.state }

// UpdatePositionAndTime feeds one GPS fix into the state machine.
func (t *Timer) UpdatePositionAndTime(fix types.GpsFix) {
	t.last4.PushFront(fix.Position)
	if t.last4.Len() < 4 {
		return
	}

	if t.state != WaitingForFirstStart {
		t.currentLaptime.Set(fix.Time.Sub(t.lapStartedAt))
		t.currentSectorTime.Set(fix.Time.Sub(t.sectorStartedAt))
	}

	switch t.state {
	case WaitingForFirstStart:
		t.checkFirstStart(fix)
	case IteratingTrackPoints:
		t.checkSection(fix)
	case WaitingForFinish:
		t.checkFinish(fix)
	}
}

func (t *Timer) last4Array() [4]types.Position {
	var out [4]types.Position
	for i := 0; i < 4; i++ {
		out[i], _ = t.last4.At(i)
	}
	return out
}

func (t *Timer) checkFirstStart(fix types.GpsFix) {
	startLine := t.track.EffectiveStartline()
	if !geo.PassedPoint(startLine, t.last4Array()) {
		return
	}

	if t.track.NumberOfSections() > 0 {
		t.state = IteratingTrackPoints
	} else {
		t.state = WaitingForFinish
	}
	t.currentSectionIdx = 0
	t.currentLaptime.Set(types.Timestamp{})
	t.currentSectorTime.Set(types.Timestamp{})
	t.lapStartedAt = fix.Time
	t.sectorStartedAt = fix.Time
	eventloop.EmitVoid(&t.LapStarted)
}

func (t *Timer) checkSection(fix types.GpsFix) {
	section, ok := t.track.Section(t.currentSectionIdx)
	if !ok || !geo.PassedPoint(section, t.last4Array()) {
		return
	}

	t.currentSectionIdx++
	if t.currentSectionIdx >= t.track.NumberOfSections() {
		t.state = WaitingForFinish
	}
	t.lastSectorTime = t.currentSectorTime.Get()
	t.sectorStartedAt = fix.Time
	t.currentSectorTime.Set(types.Timestamp{})
	eventloop.EmitVoid(&t.SectorFinished)
}

func (t *Timer) checkFinish(fix types.GpsFix) {
	if !geo.PassedPoint(t.track.Finishline, t.last4Array()) {
		return
	}

	t.lastLaptime = t.currentLaptime.Get()
	t.lastSectorTime = t.currentSectorTime.Get()
	t.lapStartedAt = fix.Time
	t.sectorStartedAt = fix.Time
	t.currentLaptime.Set(types.Timestamp{})
	t.currentSectorTime.Set(types.Timestamp{})

	if t.track.NumberOfSections() > 0 {
		t.currentSectionIdx = 0
		t.state = IteratingTrackPoints
	} else {
		t.last4.Clear()
	}

	eventloop.EmitVoid(&t.LapFinished)
	eventloop.EmitVoid(&t.LapStarted)
}
