package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/san-kum/boatsim/internal/config"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/physics"
	"github.com/san-kum/boatsim/internal/storage"
)

// Experiment is one configured run: a vessel, its pilot and the integrator
// that advances it.
type Experiment struct {
	cfg *config.Config
	log zerolog.Logger

	Vessel     *physics.Vessel
	Integrator dynamo.Integrator
	Controller dynamo.Controller
	simulator  *dynamo.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, log: zerolog.Nop()}
}

func (e *Experiment) WithLogger(l zerolog.Logger) *Experiment {
	e.log = l
	return e
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Setup builds the vessel, applies params on top of the config and wires the
// simulator with the registry's pilot, integrator and standard metrics.
func (e *Experiment) Setup(reg *Registry, params map[string]float64) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	v, err := e.cfg.NewVessel()
	if err != nil {
		return err
	}
	for name, value := range params {
		if err := v.SetParam(name, value); err != nil {
			return err
		}
	}

	integ, err := reg.GetIntegrator(e.cfg.Sim.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := reg.GetController(e.cfg.Controller, v)
	if err != nil {
		return err
	}

	e.Vessel, e.Integrator, e.Controller = v, integ, ctrl
	e.simulator = dynamo.New(v, integ, ctrl,
		dynamo.WithLogger(e.log),
		dynamo.WithMetrics(reg.DefaultMetrics(v)...),
	)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	x0 := e.cfg.InitialState(e.Vessel)
	return e.simulator.Run(ctx, x0, e.cfg.DynamoConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator {
	return e.simulator
}

// Info describes the run for storage.
func (e *Experiment) Info() storage.RunInfo {
	info := storage.RunInfo{
		Preset:         e.cfg.Preset,
		Integrator:     e.cfg.Sim.Integrator,
		Controller:     e.cfg.Controller.Type,
		Unit:           e.cfg.Sim.HostUnits,
		Dt:             e.cfg.Sim.Dt,
		Duration:       e.cfg.Sim.Duration,
		Seed:           e.cfg.Sim.Seed,
		StateColumns:   physics.StateNames,
		ControlColumns: physics.ControlNames,
	}
	if e.Vessel != nil {
		info.Params = e.Vessel.GetParams()
	}
	return info
}
