// track.go — TrackData: a circuit's start/finish lines and sector points.
package types

// TrackData describes a circuit: its name, start and finish lines, and the
// ordered sector split points between them. Sections may be empty, meaning
// "no sector splits" — the lap timer then only reports one sector per lap.
type TrackData struct {
	Name       string
	Startline  Position
	Finishline Position
	sections   []Position
}

// NewTrackData constructs a TrackData with the given sections.
func NewTrackData(name string, startline, finishline Position, sections []Position) TrackData {
	t := TrackData{Name: name, Startline: startline, Finishline: finishline}
	t.sections = append(t.sections, sections...)
	return t
}

// NumberOfSections returns the number of sector split points.
func (t TrackData) NumberOfSections() int {
	return len(t.sections)
}

// Section returns the sector point at index i, and whether i was in range.
func (t TrackData) Section(i int) (Position, bool) {
	if i < 0 || i >= len(t.sections) {
		return Position{}, false
	}
	return t.sections[i], true
}

// Sections returns the ordered sector points. The returned slice is owned by
// the caller.
func (t TrackData) Sections() []Position {
	out := make([]Position, len(t.sections))
	copy(out, t.sections)
	return out
}

// SetSections replaces the sector points wholesale.
func (t *TrackData) SetSections(sections []Position) {
	t.sections = append([]Position(nil), sections...)
}

// EffectiveStartline returns the line the lap timer waits on for the very
// first crossing: the start line if set, otherwise the finish line doubles
// as the start line (spec §3).
func (t TrackData) EffectiveStartline() Position {
	if t.Startline.IsZero() {
		return t.Finishline
	}
	return t.Startline
}

// Equal reports structural equality of name, lines, and sections.
func (t TrackData) Equal(other TrackData) bool {
	if t.Name != other.Name || t.Startline != other.Startline || t.Finishline != other.Finishline {
		return false
	}
	if len(t.sections) != len(other.sections) {
		return false
	}
	for i := range t.sections {
		if t.sections[i] != other.sections[i] {
			return false
		}
	}
	return true
}

// trackWire is the JSON shape of a track (spec §6).
type trackWire struct {
	Name       string     `json:"name"`
	Startline  Position   `json:"startline"`
	Finishline Position   `json:"finishline"`
	Sectors    []Position `json:"sectors"`
}

// MarshalJSON encodes t per spec §6.
func (t TrackData) MarshalJSON() ([]byte, error) {
	sectors := t.sections
	if sectors == nil {
		sectors = []Position{}
	}
	return marshalJSON(trackWire{Name: t.Name, Startline: t.Startline, Finishline: t.Finishline, Sectors: sectors})
}

// UnmarshalJSON decodes t from the track JSON shape.
func (t *TrackData) UnmarshalJSON(data []byte) error {
	var wire trackWire
	if err := unmarshalJSON(data, &wire); err != nil {
		*t = TrackData{}
		return nil
	}
	t.Name = wire.Name
	t.Startline = wire.Startline
	t.Finishline = wire.Finishline
	t.sections = wire.Sectors
	return nil
}
