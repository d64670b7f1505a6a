// lap.go — LapData: a lap's sector times and the fixes captured while open.
package types

// LapData holds the ordered sector times of a lap and the ordered fixes
// captured while the lap was open. Zero value is a valid, empty lap.
type LapData struct {
	sectorTimes []Timestamp
	positions   []GpsFix
}

// NewLapData constructs a LapData with the given sector times already set.
func NewLapData(sectorTimes []Timestamp) LapData {
	l := LapData{}
	l.sectorTimes = append(l.sectorTimes, sectorTimes...)
	return l
}

// Laptime is the sum of all sector times, using Timestamp's wrapping addition.
func (l LapData) Laptime() Timestamp {
	var total Timestamp
	for _, s := range l.sectorTimes {
		total = total.Add(s)
	}
	return total
}

// SectorTimeCount returns the number of recorded sector times.
func (l LapData) SectorTimeCount() int {
	return len(l.sectorTimes)
}

// SectorTime returns the sector time at index i. The original C++
// implementation used `>` here, which let an out-of-range index through;
// the correct bound is `>=` (see spec §9), applied here.
func (l LapData) SectorTime(i int) (Timestamp, bool) {
	if i < 0 || i >= len(l.sectorTimes) {
		return Timestamp{}, false
	}
	return l.sectorTimes[i], true
}

// SectorTimes returns the ordered sector times. The returned slice is owned
// by the caller; mutating it does not affect l.
func (l LapData) SectorTimes() []Timestamp {
	out := make([]Timestamp, len(l.sectorTimes))
	copy(out, l.sectorTimes)
	return out
}

// Positions returns the ordered fixes captured while the lap was open.
func (l LapData) Positions() []GpsFix {
	out := make([]GpsFix, len(l.positions))
	copy(out, l.positions)
	return out
}

// AddSectorTime appends a sector time.
func (l *LapData) AddSectorTime(t Timestamp) {
	l.sectorTimes = append(l.sectorTimes, t)
}

// AddSectorTimes replaces the sector times wholesale.
func (l *LapData) AddSectorTimes(times []Timestamp) {
	l.sectorTimes = append([]Timestamp(nil), times...)
}

// AddPosition appends a fix to the lap's position log.
func (l *LapData) AddPosition(fix GpsFix) {
	l.positions = append(l.positions, fix)
}

// OverwritePositions replaces the position log wholesale.
func (l *LapData) OverwritePositions(fixes []GpsFix) {
	l.positions = append([]GpsFix(nil), fixes...)
}

// Equal reports structural equality of sector times and positions.
func (l LapData) Equal(other LapData) bool {
	if len(l.sectorTimes) != len(other.sectorTimes) || len(l.positions) != len(other.positions) {
		return false
	}
	for i := range l.sectorTimes {
		if l.sectorTimes[i] != other.sectorTimes[i] {
			return false
		}
	}
	for i := range l.positions {
		if l.positions[i] != other.positions[i] {
			return false
		}
	}
	return true
}

// lapWire is the JSON shape of a lap inside a session (spec §6).
type lapWire struct {
	Sectors    []Timestamp `json:"sectors"`
	LogPoints  []GpsFix    `json:"log_points"`
}

// MarshalJSON encodes l per spec §6.
func (l LapData) MarshalJSON() ([]byte, error) {
	sectors := l.sectorTimes
	if sectors == nil {
		sectors = []Timestamp{}
	}
	positions := l.positions
	if positions == nil {
		positions = []GpsFix{}
	}
	return marshalJSON(lapWire{Sectors: sectors, LogPoints: positions})
}

// UnmarshalJSON decodes l from the session JSON shape.
func (l *LapData) UnmarshalJSON(data []byte) error {
	var wire lapWire
	if err := unmarshalJSON(data, &wire); err != nil {
		*l = LapData{}
		return nil
	}
	l.sectorTimes = wire.Sectors
	l.positions = wire.LogPoints
	return nil
}
