package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/san-kum/boatsim/internal/config"
	"github.com/san-kum/boatsim/internal/control"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/experiment"
	"github.com/san-kum/boatsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs one preset. Zero fields keep the preset's values; a
// non-empty Commands list replaces the controller with a schedule.
type ScenarioStep struct {
	Preset     string                   `yaml:"preset"`
	Integrator string                   `yaml:"integrator"`
	Duration   float64                  `yaml:"duration"`
	Dt         float64                  `yaml:"dt"`
	Init       *config.InitConfig       `yaml:"init"`
	Controller *config.ControllerConfig `yaml:"controller"`
	Commands   []control.Leg            `yaml:"commands"`
	Params     map[string]float64       `yaml:"params"`
	SaveAs     string                   `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	Info   storage.RunInfo
	Result *dynamo.Result
	Saved  *storage.RunMetadata
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step against its preset.
func (s ScenarioStep) Config(reg *experiment.Registry) (*config.Config, error) {
	preset := s.Preset
	if preset == "" {
		preset = config.DefaultPreset
	}
	cfg, err := reg.GetPreset(preset)
	if err != nil {
		return nil, err
	}

	if s.Integrator != "" {
		cfg.Sim.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Sim.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Sim.Dt = s.Dt
	}
	if s.Init != nil {
		cfg.Init = *s.Init
	}
	if s.Controller != nil {
		cfg.Controller = *s.Controller
	}
	if len(s.Commands) > 0 {
		cfg.Controller = config.ControllerConfig{Type: "schedule", Legs: s.Commands}
	}
	return cfg, nil
}

// RunScenario executes the steps in order. Steps with save_as are written to
// store under that name when store is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, store *storage.Store, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config(reg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		log.Info().
			Str("scenario", scenario.Name).
			Int("step", i+1).
			Int("of", len(scenario.Steps)).
			Str("preset", cfg.Preset).
			Str("controller", cfg.Controller.Type).
			Msg("running step")

		exp := experiment.New(cfg).WithLogger(log)
		if err := exp.Setup(reg, step.Params); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: cfg.Preset, Info: exp.Info(), Result: result}
		if step.SaveAs != "" {
			sr.Name = step.SaveAs
			if store != nil {
				info := sr.Info
				info.Preset = step.SaveAs
				meta, err := store.Save(info, result)
				if err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
				sr.Saved = meta
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
