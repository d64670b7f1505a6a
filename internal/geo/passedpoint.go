package geo

import "github.com/mFlorianW/rapid/internal/types"

// PassedPointRadius is the distance, in meters, within which all four
// buffered fixes must sit around a target point before a crossing can be
// detected.
const PassedPointRadius = 50

// PassedPoint reports whether the last four fixes (newest first, as stored
// in the lap timer's types.RingBuffer[types.Position]) show the vehicle crossing the given
// point: approaching, then moving away again. fixes must hold exactly 4
// entries in newest-to-oldest order; callers with fewer buffered fixes
// should not call this yet (spec §4.G: "if fewer than 4 points are
// buffered, return").
//
// The crossing condition requires every buffered fix within
// PassedPointRadius of point, the distance to decrease across the first
// pair and increase across the last pair, and the middle two distances to
// differ — a strict inequality, the same test as the original
// implementation's (d1<d2) || (d1>d2), written as d1 != d2 (spec §9).
func PassedPoint(point types.Position, fixes [4]types.Position) bool {
	for _, fix := range fixes {
		if Distance(fix, point) > PassedPointRadius {
			return false
		}
	}

	var d [4]float64
	for i, fix := range fixes {
		d[i] = Distance(fix, point)
	}

	approaching := d[0] > d[1]
	departing := d[2] < d[3]
	return approaching && departing && d[1] != d[2]
}
