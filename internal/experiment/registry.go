package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/boatsim/internal/config"
	"github.com/san-kum/boatsim/internal/control"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/integrators"
	"github.com/san-kum/boatsim/internal/metrics"
	"github.com/san-kum/boatsim/internal/physics"
)

// ControllerBuilder makes a pilot for one vessel from the controller section.
type ControllerBuilder func(cfg config.ControllerConfig, v *physics.Vessel) (dynamo.Controller, error)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	controllers map[string]ControllerBuilder
	presets     map[string]func() *config.Config
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]ControllerBuilder),
		presets:     make(map[string]func() *config.Config),
	}

	for _, name := range integrators.Names() {
		name := name
		r.integrators[name] = func() dynamo.Integrator {
			integ, _ := integrators.New(name)
			return integ
		}
	}

	r.controllers["none"] = func(_ config.ControllerConfig, v *physics.Vessel) (dynamo.Controller, error) {
		return control.NewNone(v.ControlDim()), nil
	}
	r.controllers["manual"] = func(c config.ControllerConfig, _ *physics.Vessel) (dynamo.Controller, error) {
		return control.NewManual(c.Throttle, c.Steering, c.Handbrake), nil
	}
	r.controllers["autopilot"] = func(c config.ControllerConfig, v *physics.Vessel) (dynamo.Controller, error) {
		ap := control.NewAutopilot(v, c.TargetHeadingDeg*math.Pi/180, c.TargetSpeed)
		if c.Kp != 0 || c.Ki != 0 || c.Kd != 0 {
			ap.Heading.Kp, ap.Heading.Ki, ap.Heading.Kd = c.Kp, c.Ki, c.Kd
		}
		return ap, nil
	}
	r.controllers["schedule"] = func(c config.ControllerConfig, _ *physics.Vessel) (dynamo.Controller, error) {
		return control.NewSchedule(c.Legs)
	}

	for name, fn := range config.Presets {
		r.presets[name] = fn
	}

	return r
}

// RegisterPreset adds or replaces a named vessel preset.
func (r *Registry) RegisterPreset(name string, fn func() *config.Config) {
	r.presets[name] = fn
}

func (r *Registry) RegisterController(name string, fn ControllerBuilder) {
	r.controllers[name] = fn
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = "rk4"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(cfg config.ControllerConfig, v *physics.Vessel) (dynamo.Controller, error) {
	fn, ok := r.controllers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", cfg.Type)
	}
	return fn(cfg, v)
}

func (r *Registry) GetPreset(name string) (*config.Config, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListControllers() []string { return sortedKeys(r.controllers) }
func (r *Registry) ListPresets() []string     { return sortedKeys(r.presets) }

func (r *Registry) DefaultMetrics(v *physics.Vessel) []dynamo.Metric {
	return metrics.Standard(v)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
