package control

import (
	"fmt"
	"sort"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// Leg is one timed segment of a Schedule, active from Start until the next
// leg begins.
type Leg struct {
	Start     float64 `yaml:"start" json:"start"`
	Throttle  float64 `yaml:"throttle" json:"throttle"`
	Steering  float64 `yaml:"steering" json:"steering"`
	Handbrake bool    `yaml:"handbrake" json:"handbrake"`
}

// Schedule replays fixed inputs leg by leg. Before the first leg every input
// is zero.
type Schedule struct {
	legs []Leg
}

func NewSchedule(legs []Leg) (*Schedule, error) {
	sorted := make([]Leg, len(legs))
	copy(sorted, legs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, l := range sorted {
		if l.Throttle < -1 || l.Throttle > 1 || l.Steering < -1 || l.Steering > 1 {
			return nil, fmt.Errorf("leg %d at t=%.2f: %w: inputs must be within [-1, 1]", i, l.Start, dynamo.ErrParameterBounds)
		}
	}
	return &Schedule{legs: sorted}, nil
}

func (s *Schedule) Compute(x dynamo.State, t float64) dynamo.Control {
	i := sort.Search(len(s.legs), func(i int) bool { return s.legs[i].Start > t }) - 1
	if i < 0 {
		return dynamo.Control{0, 0, 0}
	}
	l := s.legs[i]
	return dynamo.Control{l.Throttle, l.Steering, boolToAxis(l.Handbrake)}
}

// Legs returns the legs in start order.
func (s *Schedule) Legs() []Leg {
	out := make([]Leg, len(s.legs))
	copy(out, s.legs)
	return out
}
