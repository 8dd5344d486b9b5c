package boat

import "fmt"

// GetParams exposes the coefficients by name for live tuning. Boolean
// coefficients are reported as 0 or 1.
func (m *Model) GetParams() map[string]float64 {
	c := m.Coefficients
	inWater := 0.0
	if c.OnlyApplyInWater {
		inWater = 1
	}
	return map[string]float64{
		"max_forward_thrust":        c.MaxForwardThrust,
		"max_reverse_thrust":        c.MaxReverseThrust,
		"rudder_torque":             c.RudderTorqueCoefficient,
		"linear_drag":               c.LinearWaterDragCoefficient,
		"quadratic_drag":            c.QuadraticWaterDragCoefficient,
		"lateral_drag_multiplier":   c.LateralDragMultiplier,
		"angular_damping":           c.AngularDampingCoefficient,
		"buoyancy":                  c.BuoyancyCoefficient,
		"max_buoyancy_force":        c.MaxBuoyancyForce,
		"water_level":               c.WaterLevelHeight,
		"only_in_water":             inWater,
		"handbrake_linear_damping":  c.HandbrakeLinearDamping,
		"handbrake_angular_damping": c.HandbrakeAngularDamping,
	}
}

func (m *Model) SetParam(name string, value float64) error {
	c := &m.Coefficients
	switch name {
	case "max_forward_thrust":
		c.MaxForwardThrust = value
	case "max_reverse_thrust":
		c.MaxReverseThrust = value
	case "rudder_torque":
		c.RudderTorqueCoefficient = value
	case "linear_drag":
		c.LinearWaterDragCoefficient = value
	case "quadratic_drag":
		c.QuadraticWaterDragCoefficient = value
	case "lateral_drag_multiplier":
		c.LateralDragMultiplier = value
	case "angular_damping":
		c.AngularDampingCoefficient = value
	case "buoyancy":
		c.BuoyancyCoefficient = value
	case "max_buoyancy_force":
		c.MaxBuoyancyForce = value
	case "water_level":
		c.WaterLevelHeight = value
	case "only_in_water":
		c.OnlyApplyInWater = value != 0
	case "handbrake_linear_damping":
		c.HandbrakeLinearDamping = value
	case "handbrake_angular_damping":
		c.HandbrakeAngularDamping = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
