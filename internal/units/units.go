// Package units converts between SI quantities and a host engine's linear unit.
//
// The boat model works in meters, newtons and newton-meters. Hosts that measure
// length in another unit (centimeters is common in game engines) cross this
// boundary exactly once, where the body handle is injected.
package units

import (
	"fmt"
	"strings"
)

// Scale is the number of meters in one host length unit.
type Scale float64

const (
	Meters      Scale = 1
	Centimeters Scale = 0.01
)

// Parse maps a unit name to its scale.
func Parse(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "m", "meter", "meters":
		return Meters, nil
	case "cm", "centimeter", "centimeters":
		return Centimeters, nil
	default:
		return 0, fmt.Errorf("unknown length unit: %s", name)
	}
}

func (s Scale) String() string {
	switch s {
	case Meters:
		return "m"
	case Centimeters:
		return "cm"
	default:
		return fmt.Sprintf("%gm", float64(s))
	}
}

// LengthToSI converts a host length (or velocity) to meters (or m/s).
func (s Scale) LengthToSI(v float64) float64 { return v * float64(s) }

// LengthFromSI converts meters (or m/s) to host units.
func (s Scale) LengthFromSI(v float64) float64 { return v / float64(s) }

// ForceToSI converts kg·unit/s² to newtons.
func (s Scale) ForceToSI(f float64) float64 { return f * float64(s) }

// ForceFromSI converts newtons to kg·unit/s².
func (s Scale) ForceFromSI(f float64) float64 { return f / float64(s) }

// TorqueToSI converts kg·unit²/s² to newton-meters.
func (s Scale) TorqueToSI(t float64) float64 { return t * float64(s) * float64(s) }

// TorqueFromSI converts newton-meters to kg·unit²/s².
func (s Scale) TorqueFromSI(t float64) float64 { return t / (float64(s) * float64(s)) }

// InertiaToSI converts kg·unit² to kg·m².
func (s Scale) InertiaToSI(i float64) float64 { return i * float64(s) * float64(s) }
