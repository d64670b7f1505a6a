// gpsfix.go — GpsFix: the unit of input to the timing engine.
package types

import (
	"encoding/json"
	"fmt"
)

// GpsFix is one GPS sample: position, time-of-day, date, and velocity.
type GpsFix struct {
	Position Position
	Time     Timestamp
	Date     Date
	Velocity Velocity
}

// Validate reports a ParseError-shaped error when the fix's coordinates are
// outside valid ranges. Nothing is clamped; it is up to the caller to log
// and drop. The active-session workflow does not call it.
func (f GpsFix) Validate() error {
	if f.Position.Latitude < -90 || f.Position.Latitude > 90 {
		return fmt.Errorf("gps fix latitude %v out of range: %w", f.Position.Latitude, errMalformed)
	}
	if f.Position.Longitude < -180 || f.Position.Longitude > 180 {
		return fmt.Errorf("gps fix longitude %v out of range: %w", f.Position.Longitude, errMalformed)
	}
	return nil
}

// gpsFixWire is the JSON shape used inside a lap's log_points array (spec §6):
// lat/lon/velocity are numbers here, unlike the free-standing Position shape.
type gpsFixWire struct {
	Velocity  float64   `json:"velocity"`
	Longitude float32   `json:"longitude"`
	Latitude  float32   `json:"latitude"`
	Time      Timestamp `json:"time"`
	Date      Date      `json:"date"`
}

// MarshalJSON encodes f as a log-point entry.
func (f GpsFix) MarshalJSON() ([]byte, error) {
	return json.Marshal(gpsFixWire{
		Velocity:  f.Velocity.MPS(),
		Longitude: f.Position.Longitude,
		Latitude:  f.Position.Latitude,
		Time:      f.Time,
		Date:      f.Date,
	})
}

// UnmarshalJSON decodes f from a log-point entry.
func (f *GpsFix) UnmarshalJSON(data []byte) error {
	var wire gpsFixWire
	if err := json.Unmarshal(data, &wire); err != nil {
		*f = GpsFix{}
		return nil
	}
	f.Position = Position{Latitude: wire.Latitude, Longitude: wire.Longitude}
	f.Time = wire.Time
	f.Date = wire.Date
	f.Velocity = NewVelocityFromMPS(wire.Velocity)
	return nil
}
