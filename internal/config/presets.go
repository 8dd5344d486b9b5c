package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/boat"
)

// Presets are named starting points; each call builds a fresh Config.
var Presets = map[string]func() *Config{
	"runabout": DefaultConfig,
	"runabout_cm": func() *Config {
		cfg := DefaultConfig()
		cfg.Preset = "runabout_cm"
		cfg.Sim.HostUnits = "cm"
		return cfg
	},
	"jetski": func() *Config {
		c := boat.DefaultCoefficients()
		c.MaxForwardThrust = 4500
		c.MaxReverseThrust = 1500
		c.RudderTorqueCoefficient = 120
		c.LinearWaterDragCoefficient = 90
		c.QuadraticWaterDragCoefficient = 20
		c.LateralDragMultiplier = 2.5
		c.AngularDampingCoefficient = 500
		c.BuoyancyCoefficient = 15000
		c.HandbrakeAngularDamping = 300

		cfg := DefaultConfig().withVessel(c)
		cfg.Preset = "jetski"
		cfg.Sim.Duration = 20
		cfg.withHull(350, mgl64.Vec3{40, 180, 200})
		return cfg
	},
	"barge": func() *Config {
		c := boat.DefaultCoefficients()
		c.MaxForwardThrust = 40000
		c.MaxReverseThrust = 30000
		c.RudderTorqueCoefficient = 3000
		c.LinearWaterDragCoefficient = 4000
		c.QuadraticWaterDragCoefficient = 900
		c.LateralDragMultiplier = 4
		c.AngularDampingCoefficient = 80000
		c.BuoyancyCoefficient = 400000
		c.HandbrakeAngularDamping = 40000

		cfg := DefaultConfig().withVessel(c)
		cfg.Preset = "barge"
		cfg.Sim.Duration = 60
		cfg.Sim.Dt = 0.02
		cfg.withHull(20000, mgl64.Vec3{30000, 200000, 220000})
		return cfg
	},
}

// runaboutCoefficients tames the default rudder so a full-lock turn stays
// under one radian per second at top speed.
func runaboutCoefficients() boat.Coefficients {
	c := boat.DefaultCoefficients()
	c.RudderTorqueCoefficient = 400
	c.AngularDampingCoefficient = 6000
	return c
}

func (c *Config) withVessel(coef boat.Coefficients) *Config {
	c.Vessel = VesselFromCoefficients(coef)
	return c
}

func (c *Config) withHull(mass float64, inertia mgl64.Vec3) {
	c.Hull.Mass = mass
	c.Hull.InertiaRoll = inertia[0]
	c.Hull.InertiaPitch = inertia[1]
	c.Hull.InertiaYaw = inertia[2]
}

// GetPreset returns nil for unknown names.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
