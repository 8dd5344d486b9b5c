package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// SweepPoint is the settled response for one parameter value.
type SweepPoint struct {
	Param float64
	Mean  float64
	Min   float64
	Max   float64
}

// SteadyState describes one SteadyStateSweep.
type SteadyState struct {
	Param    string
	From, To float64
	Steps    int

	// Control is held for the whole run.
	Control dynamo.Control
	// Probe reduces a state to the recorded value, e.g. speed or depth.
	Probe func(x dynamo.State) float64

	Dt        float64
	Transient float64
	Record    float64
}

// SteadyStateSweep varies one parameter of sys, lets each run settle for
// Transient seconds and then records Probe for Record seconds. The parameter
// is restored afterwards.
func SteadyStateSweep(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, s SteadyState) ([]SweepPoint, error) {
	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("system does not expose tunable parameters")
	}
	original, ok := tunable.GetParams()[s.Param]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, s.Param)
	}
	defer tunable.SetParam(s.Param, original)

	if s.Dt <= 0 || s.Record <= 0 || s.Probe == nil {
		return nil, fmt.Errorf("sweep needs a positive dt, a record window and a probe")
	}
	steps := s.Steps
	if steps < 2 {
		steps = 2
	}
	stride := (s.To - s.From) / float64(steps-1)

	results := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := s.From + float64(i)*stride
		if err := tunable.SetParam(s.Param, param); err != nil {
			return results, err
		}

		x := x0.Clone()
		t := 0.0
		for ; t < s.Transient; t += s.Dt {
			x = step(sys, integ, x, s.Control, t, s.Dt)
		}

		pt := SweepPoint{Param: param, Min: math.Inf(1), Max: math.Inf(-1)}
		n := 0
		for end := s.Transient + s.Record; t < end; t += s.Dt {
			x = step(sys, integ, x, s.Control, t, s.Dt)
			v := s.Probe(x)
			pt.Mean += v
			pt.Min = math.Min(pt.Min, v)
			pt.Max = math.Max(pt.Max, v)
			n++
		}
		if !x.IsValid() {
			return results, &dynamo.SimulationError{Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
		}
		pt.Mean /= float64(n)
		results = append(results, pt)
	}
	return results, nil
}

func step(sys dynamo.System, integ dynamo.Integrator, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	next := integ.Step(sys, x, u, t, dt)
	if p, ok := sys.(dynamo.Projector); ok {
		next = p.Project(next)
	}
	return next
}
