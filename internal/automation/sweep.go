package automation

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/boatsim/internal/analysis"
	"github.com/san-kum/boatsim/internal/config"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/experiment"
)

// StopSpeed is the speed, m/s, at which the stopping manoeuvre counts the
// hull as stopped.
const StopSpeed = 0.1

// Sweep varies one vessel parameter and measures three manoeuvres per value:
// a full-throttle run from rest, a full-lock turn and a handbrake stop from
// top speed.
type Sweep struct {
	Preset     string
	Integrator string
	Param      string
	Min, Max   float64
	Steps      int
	Dt         float64
	Duration   float64
}

type SweepResult struct {
	Value            float64
	TopSpeed         float64
	TurningDiameter  float64 // NaN when the hull never completes the turn
	StoppingDistance float64 // NaN when the hull never stops
	StoppingTime     float64
	Err              error
}

// Values lists the swept parameter values, Min and Max included.
func (sw Sweep) Values() []float64 {
	if sw.Steps <= 1 {
		return []float64{sw.Min}
	}
	step := (sw.Max - sw.Min) / float64(sw.Steps-1)
	values := make([]float64, sw.Steps)
	for i := range values {
		values[i] = sw.Min + float64(i)*step
	}
	return values
}

// RunSweep evaluates every value in parallel. A failure in one point is
// reported in its SweepResult; RunSweep itself fails only on bad input or
// cancellation.
func RunSweep(ctx context.Context, sw Sweep, reg *experiment.Registry) ([]SweepResult, error) {
	if sw.Param == "" {
		return nil, fmt.Errorf("sweep parameter not set")
	}
	base, err := sw.config(reg)
	if err != nil {
		return nil, err
	}
	v, err := base.NewVessel()
	if err != nil {
		return nil, err
	}
	if _, ok := v.GetParams()[sw.Param]; !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, sw.Param)
	}

	values := sw.Values()
	results := make([]SweepResult, len(values))

	dynamo.ParallelFor(len(values), 1, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = sw.evaluate(ctx, reg, values[i])
		}
	})

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (sw Sweep) config(reg *experiment.Registry) (*config.Config, error) {
	preset := sw.Preset
	if preset == "" {
		preset = config.DefaultPreset
	}
	cfg, err := reg.GetPreset(preset)
	if err != nil {
		return nil, err
	}
	if sw.Integrator != "" {
		cfg.Sim.Integrator = sw.Integrator
	}
	if sw.Dt > 0 {
		cfg.Sim.Dt = sw.Dt
	}
	if sw.Duration > 0 {
		cfg.Sim.Duration = sw.Duration
	}
	cfg.Init = config.InitConfig{}
	return cfg, nil
}

func (sw Sweep) evaluate(ctx context.Context, reg *experiment.Registry, value float64) SweepResult {
	res := SweepResult{Value: value, TurningDiameter: math.NaN(), StoppingDistance: math.NaN()}

	accel, err := sw.manoeuvre(ctx, reg, value, 0, config.ControllerConfig{Type: "manual", Throttle: 1})
	if err != nil {
		res.Err = err
		return res
	}
	for _, s := range accel.Speeds {
		res.TopSpeed = math.Max(res.TopSpeed, s)
	}

	turn, err := sw.manoeuvre(ctx, reg, value, res.TopSpeed, config.ControllerConfig{Type: "manual", Throttle: 1, Steering: 1})
	if err != nil {
		res.Err = err
		return res
	}
	if d, err := analysis.TurningDiameter(turn); err == nil {
		res.TurningDiameter = d
	} else {
		res.Err = err
	}

	stop, err := sw.manoeuvre(ctx, reg, value, res.TopSpeed, config.ControllerConfig{Type: "manual", Handbrake: true})
	if err != nil {
		res.Err = err
		return res
	}
	d, t, err := analysis.StoppingDistance(stop, StopSpeed)
	if err == nil {
		res.StoppingDistance, res.StoppingTime = d, t
	} else if res.Err == nil {
		res.Err = err
	}
	return res
}

func (sw Sweep) manoeuvre(ctx context.Context, reg *experiment.Registry, value, speed float64, ctrl config.ControllerConfig) (*analysis.Track, error) {
	cfg, err := sw.config(reg)
	if err != nil {
		return nil, err
	}
	cfg.Init.Speed = speed
	cfg.Controller = ctrl

	exp := experiment.New(cfg)
	if err := exp.Setup(reg, map[string]float64{sw.Param: value}); err != nil {
		return nil, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.NewTrack(exp.Vessel, result), nil
}
