// Package positioning supplies GPS fixes to the rest of the engine. The
// only contract anything upstream needs is a live GpsPosition property;
// ConstantGpsPositionProvider is the replay-from-a-waypoint-list
// implementation used for tests and simulated sessions, grounded on
// IGpsPositionProvider.hpp/ConstantGpsPositionProvider.cpp.
package positioning

import (
	"math"
	"time"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/ostimer"
	"github.com/mFlorianW/rapid/internal/rlog"
	"github.com/mFlorianW/rapid/internal/types"
)

var posLog = rlog.For("positioning")

// GpsPositionProvider is anything that publishes a live stream of GPS fixes.
// Active-session and track-detection workflows depend on this, not on any
// concrete provider.
type GpsPositionProvider interface {
	GpsPosition() *eventloop.Property[types.GpsFix]
}

const tickInterval = 100 * time.Millisecond

// ConstantGpsPositionProvider replays a list of positions at 10Hz. When two
// consecutive waypoints are farther apart than one tick's travel distance,
// the position in between is interpolated along the straight line joining
// them at the configured velocity.
type ConstantGpsPositionProvider struct {
	loop *eventloop.Loop
	tick *ostimer.Timer

	velocityMPS float64
	waypoints   []types.Position
	nextIdx     int
	current     types.Position

	gpsPosition *eventloop.Property[types.GpsFix]
}

// NewConstantGpsPositionProvider constructs a stopped provider replaying
// waypoints once started.
func NewConstantGpsPositionProvider(loop *eventloop.Loop, waypoints []types.Position) *ConstantGpsPositionProvider {
	p := &ConstantGpsPositionProvider{
		loop:        loop,
		tick:        ostimer.NewTimer(loop),
		gpsPosition: eventloop.NewProperty(loop, types.GpsFix{}),
	}
	p.tick.Timeout.Connect(func(struct{}) { p.handleTick() })
	p.SetGpsPositions(waypoints)
	return p
}

// GpsPosition returns the live position property; it changes on every tick
// while the provider is running.
func (p *ConstantGpsPositionProvider) GpsPosition() *eventloop.Property[types.GpsFix] {
	return p.gpsPosition
}

// SetGpsPositions overwrites the waypoint list used for playback and resets
// the replay cursor to its start.
func (p *ConstantGpsPositionProvider) SetGpsPositions(waypoints []types.Position) {
	p.waypoints = waypoints
	p.nextIdx = 0
	if len(waypoints) > 0 {
		p.current = waypoints[0]
	}
}

// SetVelocityInMetersPerSecond sets the replay speed. Changing it while
// running is allowed; it takes effect on the next tick.
func (p *ConstantGpsPositionProvider) SetVelocityInMetersPerSecond(v float64) {
	p.velocityMPS = v
}

// Start begins emitting GpsPosition updates at 10Hz.
func (p *ConstantGpsPositionProvider) Start() {
	p.tick.SetInterval(tickInterval, true)
}

// Stop halts playback; GpsPosition stops changing.
func (p *ConstantGpsPositionProvider) Stop() {
	p.tick.Stop()
}

func (p *ConstantGpsPositionProvider) handleTick() {
	if len(p.waypoints) == 0 {
		posLog.Warn("no waypoints configured, nothing to replay")
		return
	}

	switch {
	case p.nextIdx == 0:
		p.current = p.waypoints[0]
		p.nextIdx++
	case p.nextIdx >= len(p.waypoints):
		p.nextIdx = 0
	default:
		target := p.waypoints[p.nextIdx]
		dx, dy := metersBetween(p.current, target)
		length := math.Hypot(dx, dy)
		if length > 0 {
			travel := p.velocityMPS * tickInterval.Seconds()
			p.current = offsetPosition(p.current, dx/length*travel, dy/length*travel)

			dx, dy = metersBetween(p.current, target)
			if math.Hypot(dx, dy) > length {
				p.nextIdx += 2
				if p.nextIdx >= len(p.waypoints) {
					p.nextIdx = 0
				}
			}
		} else {
			p.nextIdx += 2
			if p.nextIdx >= len(p.waypoints) {
				p.nextIdx = 0
			}
		}
	}

	now := time.Now()
	p.gpsPosition.Set(types.GpsFix{
		Position: p.current,
		Time:     timestampFromTime(now),
		Date:     dateFromTime(now),
		Velocity: types.NewVelocityFromMPS(p.velocityMPS),
	})
}

// metersBetween returns the (east, north) offset in meters from a to b,
// using the same equirectangular approximation geo.Distance is built on.
func metersBetween(a, b types.Position) (east, north float64) {
	lat := float64(a.Latitude+b.Latitude) / 2 * math.Pi / 180
	east = 111300 * math.Cos(lat) * float64(b.Longitude-a.Longitude)
	north = 111300 * float64(b.Latitude-a.Latitude)
	return east, north
}

// offsetPosition moves pos by (east, north) meters, inverting the same
// projection metersBetween uses.
func offsetPosition(pos types.Position, east, north float64) types.Position {
	lat := float64(pos.Latitude) * math.Pi / 180
	dLon := east / (111300 * math.Cos(lat))
	dLat := north / 111300
	return types.Position{
		Latitude:  pos.Latitude + float32(dLat),
		Longitude: pos.Longitude + float32(dLon),
	}
}

func timestampFromTime(t time.Time) types.Timestamp {
	return types.Timestamp{
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
		Millis: uint16(t.Nanosecond() / 1_000_000),
	}
}

func dateFromTime(t time.Time) types.Date {
	return types.Date{Year: uint16(t.Year()), Month: uint8(t.Month()), Day: uint8(t.Day())}
}
