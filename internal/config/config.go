package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-viper/mapstructure/v2"
	"github.com/san-kum/boatsim/internal/boat"
	"github.com/san-kum/boatsim/internal/control"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/physics"
	"github.com/san-kum/boatsim/internal/units"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 30.0
	DefaultPreset   = "runabout"
	DefaultDataDir  = "./data"

	// EnvPrefix prefixes environment overrides: BOATSIM_SIM_DT=0.005.
	EnvPrefix = "BOATSIM"
)

var ControllerTypes = []string{"none", "manual", "autopilot", "schedule"}

type Config struct {
	Preset     string           `yaml:"preset"`
	LogLevel   string           `yaml:"log_level"`
	DataDir    string           `yaml:"data_dir"`
	Catalog    string           `yaml:"catalog"`
	Sim        SimConfig        `yaml:"sim"`
	Hull       HullConfig       `yaml:"hull"`
	Vessel     VesselConfig     `yaml:"vessel"`
	Init       InitConfig       `yaml:"init"`
	Controller ControllerConfig `yaml:"controller"`
}

type SimConfig struct {
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Integrator string  `yaml:"integrator"`
	HostUnits  string  `yaml:"host_units"`
	Adaptive   bool    `yaml:"adaptive"`
	Tolerance  float64 `yaml:"tolerance"`
	Seed       int64   `yaml:"seed"`
}

type HullConfig struct {
	Mass         float64 `yaml:"mass"`
	InertiaRoll  float64 `yaml:"inertia_roll"`
	InertiaPitch float64 `yaml:"inertia_pitch"`
	InertiaYaw   float64 `yaml:"inertia_yaw"`
	Gravity      float64 `yaml:"gravity"`
}

// VesselConfig mirrors boat.Coefficients with the parameter names used by
// SetParam.
type VesselConfig struct {
	MaxForwardThrust        float64 `yaml:"max_forward_thrust"`
	MaxReverseThrust        float64 `yaml:"max_reverse_thrust"`
	RudderTorque            float64 `yaml:"rudder_torque"`
	LinearDrag              float64 `yaml:"linear_drag"`
	QuadraticDrag           float64 `yaml:"quadratic_drag"`
	LateralDragMultiplier   float64 `yaml:"lateral_drag_multiplier"`
	AngularDamping          float64 `yaml:"angular_damping"`
	Buoyancy                float64 `yaml:"buoyancy"`
	MaxBuoyancyForce        float64 `yaml:"max_buoyancy_force"`
	WaterLevel              float64 `yaml:"water_level"`
	OnlyInWater             bool    `yaml:"only_in_water"`
	HandbrakeLinearDamping  float64 `yaml:"handbrake_linear_damping"`
	HandbrakeAngularDamping float64 `yaml:"handbrake_angular_damping"`
}

type InitConfig struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	HeadingDeg float64 `yaml:"heading_deg"`
	Speed      float64 `yaml:"speed"`
}

type ControllerConfig struct {
	Type             string        `yaml:"type"`
	Throttle         float64       `yaml:"throttle"`
	Steering         float64       `yaml:"steering"`
	Handbrake        bool          `yaml:"handbrake"`
	TargetHeadingDeg float64       `yaml:"target_heading_deg"`
	TargetSpeed      float64       `yaml:"target_speed"`
	Kp               float64       `yaml:"kp"`
	Ki               float64       `yaml:"ki"`
	Kd               float64       `yaml:"kd"`
	Legs             []control.Leg `yaml:"legs,omitempty"`
}

func DefaultConfig() *Config {
	h := physics.DefaultHull()
	return &Config{
		Preset:   DefaultPreset,
		LogLevel: "info",
		DataDir:  DefaultDataDir,
		Sim: SimConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: "rk4",
			HostUnits:  "m",
			Tolerance:  1e-6,
		},
		Hull: HullConfig{
			Mass:         h.Mass,
			InertiaRoll:  h.Inertia[0],
			InertiaPitch: h.Inertia[1],
			InertiaYaw:   h.Inertia[2],
			Gravity:      h.Gravity,
		},
		Vessel: VesselFromCoefficients(runaboutCoefficients()),
		Controller: ControllerConfig{
			Type:     "manual",
			Throttle: 1,
		},
	}
}

func VesselFromCoefficients(c boat.Coefficients) VesselConfig {
	return VesselConfig{
		MaxForwardThrust:        c.MaxForwardThrust,
		MaxReverseThrust:        c.MaxReverseThrust,
		RudderTorque:            c.RudderTorqueCoefficient,
		LinearDrag:              c.LinearWaterDragCoefficient,
		QuadraticDrag:           c.QuadraticWaterDragCoefficient,
		LateralDragMultiplier:   c.LateralDragMultiplier,
		AngularDamping:          c.AngularDampingCoefficient,
		Buoyancy:                c.BuoyancyCoefficient,
		MaxBuoyancyForce:        c.MaxBuoyancyForce,
		WaterLevel:              c.WaterLevelHeight,
		OnlyInWater:             c.OnlyApplyInWater,
		HandbrakeLinearDamping:  c.HandbrakeLinearDamping,
		HandbrakeAngularDamping: c.HandbrakeAngularDamping,
	}
}

func (v VesselConfig) Coefficients() boat.Coefficients {
	return boat.Coefficients{
		MaxForwardThrust:              v.MaxForwardThrust,
		MaxReverseThrust:              v.MaxReverseThrust,
		RudderTorqueCoefficient:       v.RudderTorque,
		LinearWaterDragCoefficient:    v.LinearDrag,
		QuadraticWaterDragCoefficient: v.QuadraticDrag,
		LateralDragMultiplier:         v.LateralDragMultiplier,
		AngularDampingCoefficient:     v.AngularDamping,
		BuoyancyCoefficient:           v.Buoyancy,
		MaxBuoyancyForce:              v.MaxBuoyancyForce,
		WaterLevelHeight:              v.WaterLevel,
		OnlyApplyInWater:              v.OnlyInWater,
		HandbrakeLinearDamping:        v.HandbrakeLinearDamping,
		HandbrakeAngularDamping:       v.HandbrakeAngularDamping,
	}
}

// HullSpec converts the hull section, resolving the host length unit.
func (c *Config) HullSpec() (physics.Hull, error) {
	unit, err := units.Parse(c.Sim.HostUnits)
	if err != nil {
		return physics.Hull{}, err
	}
	return physics.Hull{
		Mass:    c.Hull.Mass,
		Inertia: mgl64.Vec3{c.Hull.InertiaRoll, c.Hull.InertiaPitch, c.Hull.InertiaYaw},
		Gravity: c.Hull.Gravity,
		Unit:    unit,
	}, nil
}

// NewVessel builds the vessel described by the hull and vessel sections.
func (c *Config) NewVessel() (*physics.Vessel, error) {
	hull, err := c.HullSpec()
	if err != nil {
		return nil, err
	}
	return physics.NewVessel(hull, boat.NewWithCoefficients(c.Vessel.Coefficients())), nil
}

// InitialState places v according to the init section.
func (c *Config) InitialState(v *physics.Vessel) dynamo.State {
	return v.InitialState(c.Init.X, c.Init.Y, c.Init.HeadingDeg*math.Pi/180, c.Init.Speed)
}

func (c *Config) DynamoConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Sim.Dt
	cfg.Duration = c.Sim.Duration
	cfg.Seed = c.Sim.Seed
	cfg.Adaptive = c.Sim.Adaptive
	if c.Sim.Tolerance > 0 {
		cfg.Tolerance = c.Sim.Tolerance
	}
	if cfg.MaxDt < cfg.Dt {
		cfg.MaxDt = cfg.Dt
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Sim.Dt <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %f", c.Sim.Dt)
	}
	if c.Sim.Duration <= 0 {
		return fmt.Errorf("sim.duration must be positive, got %f", c.Sim.Duration)
	}
	if c.Hull.Mass <= 0 {
		return fmt.Errorf("%w: hull.mass must be positive, got %f", dynamo.ErrParameterBounds, c.Hull.Mass)
	}
	if _, err := units.Parse(c.Sim.HostUnits); err != nil {
		return fmt.Errorf("sim.host_units: %w", err)
	}
	for _, t := range ControllerTypes {
		if c.Controller.Type == t {
			return nil
		}
	}
	return fmt.Errorf("unknown controller: %s", c.Controller.Type)
}

// Load layers the defaults, the YAML file at path (optional when empty) and
// BOATSIM_* environment variables, in that order.
func Load(path string) (*Config, error) {
	return LoadFrom(DefaultConfig(), path)
}

// LoadFrom is Load with base, usually a preset, in place of the defaults.
func LoadFrom(defaults *Config, path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	base, err := yaml.Marshal(defaults)
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("error reading defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params lists every vessel and hull parameter by its SetParam name.
func (c *Config) Params() map[string]float64 {
	v, err := c.NewVessel()
	if err != nil {
		return nil
	}
	return v.GetParams()
}
