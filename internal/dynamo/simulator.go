package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

type Simulator struct {
	sys        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
	log        zerolog.Logger
}

type Option func(*Simulator)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

func New(sys System, integrator Integrator, controller Controller, opts ...Option) *Simulator {
	s := &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	s.log.Debug().
		Float64("dt", cfg.Dt).
		Float64("duration", cfg.Duration).
		Bool("adaptive", cfg.Adaptive).
		Msg("simulation started")

	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= cfg.Duration-1e-12 {
				break
			}
			dt = math.Min(dt, cfg.Duration-t)
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			s.log.Warn().Int("step", i).Float64("t", t).Msg("simulation cancelled")
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		var newX State
		var stepErr error
		taken := dt

		if cfg.Adaptive {
			newX, taken, dt, stepErr = s.adaptiveStep(x, u, t, dt, cfg)
		} else {
			newX = s.integrator.Step(s.sys, x, u, t, dt)
		}
		newX = s.project(newX)

		if stepErr != nil {
			result.Errors = append(result.Errors, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: stepErr})
			s.log.Warn().Err(stepErr).Int("step", i).Float64("t", t).Msg("step degraded")
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			s.log.Error().Int("step", i).Float64("t", t).Msg("invalid state, stopping")
			break
		}

		x = newX
		t += taken
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug().
		Int("steps", result.StepsTaken).
		Float64("t", t).
		Int("errors", len(result.Errors)).
		Msg("simulation finished")

	return result, nil
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if len(x0) != s.sys.StateDim() {
		return fmt.Errorf("%w: state has %d elements, system wants %d", ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if h, ok := s.sys.(Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

func (s *Simulator) project(x State) State {
	if p, ok := s.sys.(Projector); ok {
		return p.Project(x)
	}
	return x
}

// adaptiveStep returns the new state, the step actually taken and the
// suggested next step.
func (s *Simulator) adaptiveStep(x State, u Control, t, dt float64, cfg Config) (State, float64, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			next, suggested, err := adaptive.StepAdaptive(s.sys, x, u, t, dt, cfg.Tolerance)
			if errors.Is(err, ErrStepRejected) {
				if suggested >= cfg.MinDt {
					dt = suggested
					continue
				}
				return next, dt, cfg.MinDt, ErrStepTooSmall
			}
			if err != nil {
				return next, dt, dt, err
			}
			return next, dt, math.Min(suggested, cfg.MaxDt), nil
		}
	}

	// step doubling for fixed-step integrators
	for {
		x1 := s.integrator.Step(s.sys, x, u, t, dt)
		xHalf := s.integrator.Step(s.sys, x, u, t, dt/2)
		x2 := s.integrator.Step(s.sys, xHalf, u, t+dt/2, dt/2)

		errNorm := x1.Sub(x2).Norm()
		if errNorm > cfg.Tolerance && dt/2 >= cfg.MinDt {
			dt /= 2
			continue
		}

		next := dt
		if errNorm < cfg.Tolerance/10 && dt < cfg.MaxDt {
			next = math.Min(dt*2, cfg.MaxDt)
		}
		if errNorm > cfg.Tolerance {
			return x2, dt, next, ErrStepTooSmall
		}
		return x2, dt, next, nil
	}
}

// RunWithCallback streams each step to callback instead of collecting a
// Result. Returning false from callback stops the run without error.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	steps := int(math.Round(cfg.Duration / cfg.Dt))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		u := s.controller.Compute(x, t)

		if !callback(x, u, t) {
			return nil
		}

		x = s.project(s.integrator.Step(s.sys, x, u, t, cfg.Dt))

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: i, Time: t + cfg.Dt, State: x, Wrapped: ErrInvalidState}
		}
	}

	return nil
}
