// session.go — SessionMeta and SessionData: the persisted session shape.
package types

// SessionMeta identifies a session: the track it was driven on, the date and
// time it started, and the store-assigned id (0 before persistence).
type SessionMeta struct {
	Track TrackData
	Date  Date
	Time  Timestamp
	ID    uint64
}

// SessionData is a SessionMeta plus its ordered laps. A session with no laps
// is valid — it exists as soon as it is started.
type SessionData struct {
	SessionMeta
	laps []LapData
}

// NewSessionData constructs an empty session for the given track/date/time.
func NewSessionData(track TrackData, date Date, time Timestamp) SessionData {
	return SessionData{SessionMeta: SessionMeta{Track: track, Date: date, Time: time}}
}

// NumberOfLaps returns the number of completed laps stored in the session.
func (s SessionData) NumberOfLaps() int {
	return len(s.laps)
}

// Laps returns the ordered laps. The returned slice is owned by the caller.
func (s SessionData) Laps() []LapData {
	out := make([]LapData, len(s.laps))
	copy(out, s.laps)
	return out
}

// Lap returns the lap at index i, and whether i was in range.
func (s SessionData) Lap(i int) (LapData, bool) {
	if i < 0 || i >= len(s.laps) {
		return LapData{}, false
	}
	return s.laps[i], true
}

// AddLap appends a completed lap. Laps are never rewritten once added.
func (s *SessionData) AddLap(lap LapData) {
	s.laps = append(s.laps, lap)
}

// Equal reports structural equality of meta, laps, and sectors/positions
// inside each lap — ignoring the store-assigned ID, matching the round-trip
// property in spec §8 ("structural equality, ignoring assigned id").
func (s SessionData) Equal(other SessionData) bool {
	if !s.Track.Equal(other.Track) || !s.Date.Equal(other.Date) || !s.Time.Equal(other.Time) {
		return false
	}
	if len(s.laps) != len(other.laps) {
		return false
	}
	for i := range s.laps {
		if !s.laps[i].Equal(other.laps[i]) {
			return false
		}
	}
	return true
}

// sessionMetaWire is the JSON shape of SessionMeta (spec §6).
type sessionMetaWire struct {
	ID    uint64    `json:"id"`
	Date  Date      `json:"date"`
	Time  Timestamp `json:"time"`
	Track TrackData `json:"track"`
}

// MarshalJSON encodes the meta-only view.
func (m SessionMeta) MarshalJSON() ([]byte, error) {
	return marshalJSON(sessionMetaWire{ID: m.ID, Date: m.Date, Time: m.Time, Track: m.Track})
}

// UnmarshalJSON decodes the meta-only view.
func (m *SessionMeta) UnmarshalJSON(data []byte) error {
	var wire sessionMetaWire
	if err := unmarshalJSON(data, &wire); err != nil {
		*m = SessionMeta{}
		return nil
	}
	m.ID = wire.ID
	m.Date = wire.Date
	m.Time = wire.Time
	m.Track = wire.Track
	return nil
}

// sessionWire is SessionMeta plus the laps array (spec §6).
type sessionWire struct {
	ID    uint64    `json:"id"`
	Date  Date      `json:"date"`
	Time  Timestamp `json:"time"`
	Track TrackData `json:"track"`
	Laps  []LapData `json:"laps"`
}

// MarshalJSON encodes the full session.
func (s SessionData) MarshalJSON() ([]byte, error) {
	laps := s.laps
	if laps == nil {
		laps = []LapData{}
	}
	return marshalJSON(sessionWire{ID: s.ID, Date: s.Date, Time: s.Time, Track: s.Track, Laps: laps})
}

// UnmarshalJSON decodes the full session.
func (s *SessionData) UnmarshalJSON(data []byte) error {
	var wire sessionWire
	if err := unmarshalJSON(data, &wire); err != nil {
		*s = SessionData{}
		return nil
	}
	s.ID = wire.ID
	s.Date = wire.Date
	s.Time = wire.Time
	s.Track = wire.Track
	s.laps = wire.Laps
	return nil
}
