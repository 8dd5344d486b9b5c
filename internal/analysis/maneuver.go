package analysis

import (
	"errors"
	"math"
)

var (
	ErrNoFullTurn = errors.New("analysis: track never completes a half turn after settling")
	ErrNeverStops = errors.New("analysis: hull never slows below the stop speed")
)

// SettleTurn is the heading change, radians, skipped before measuring a turn.
const SettleTurn = math.Pi / 2

// TurningDiameter measures the steady turning circle of a constant-rudder
// run: after the first SettleTurn of heading change it finds the point where
// the heading has changed by a further π and returns the distance between the
// two points, in meters.
func TurningDiameter(tr *Track) (float64, error) {
	if tr == nil || tr.Len() < 2 {
		return 0, ErrNoFullTurn
	}

	h0 := tr.Headings[0]
	start := -1
	for i, h := range tr.Headings {
		if start < 0 {
			if math.Abs(h-h0) >= SettleTurn {
				start = i
			}
			continue
		}
		if math.Abs(h-tr.Headings[start]) >= math.Pi {
			return math.Hypot(tr.X[i]-tr.X[start], tr.Y[i]-tr.Y[start]), nil
		}
	}
	return 0, ErrNoFullTurn
}

// StoppingDistance returns the path length from the start of the track until
// the speed first drops to stopSpeed m/s, and the time that took.
func StoppingDistance(tr *Track, stopSpeed float64) (distance, duration float64, err error) {
	if tr == nil || tr.Len() == 0 {
		return 0, 0, ErrNeverStops
	}
	for i := 0; i < tr.Len(); i++ {
		if i > 0 {
			distance += math.Hypot(tr.X[i]-tr.X[i-1], tr.Y[i]-tr.Y[i-1])
		}
		if tr.Speeds[i] <= stopSpeed {
			return distance, tr.Times[i] - tr.Times[0], nil
		}
	}
	return distance, tr.Times[tr.Len()-1] - tr.Times[0], ErrNeverStops
}
