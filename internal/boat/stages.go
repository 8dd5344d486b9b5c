package boat

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Wrench is a force and torque pair applied at the center of mass.
type Wrench struct {
	Force  mgl64.Vec3
	Torque mgl64.Vec3
	Active bool
}

// Breakdown holds the contribution of each stage for one tick.
type Breakdown struct {
	Thrust        Wrench
	Rudder        Wrench
	Hydrodynamics Wrench
	Buoyancy      Wrench
	// HandbrakeDamping is the extra linear damping applied with buoyancy; it is
	// gated together with it.
	HandbrakeDamping Wrench
}

// Stages lists the wrenches in application order.
func (b Breakdown) Stages() []Wrench {
	return []Wrench{b.Thrust, b.Rudder, b.Hydrodynamics, b.Buoyancy, b.HandbrakeDamping}
}

// Total sums every active stage.
func (b Breakdown) Total() (force, torque mgl64.Vec3) {
	for _, w := range b.Stages() {
		if !w.Active {
			continue
		}
		force = force.Add(w.Force)
		torque = torque.Add(w.Torque)
	}
	return force, torque
}

// Compute evaluates all stages against k without touching any body.
func (m *Model) Compute(k Kinematics) Breakdown {
	b := Breakdown{
		Thrust: m.thrust(k),
		Rudder: m.rudder(k),
	}
	b.Hydrodynamics = m.hydrodynamics(k)
	b.Buoyancy, b.HandbrakeDamping = m.buoyancy(k)
	return b
}

func (m *Model) thrust(k Kinematics) Wrench {
	maxThrust := m.MaxForwardThrust
	if m.throttle < 0 {
		maxThrust = m.MaxReverseThrust
	}
	return Wrench{
		Force:  k.Forward().Mul(maxThrust * m.throttle),
		Active: true,
	}
}

// rudder has no authority at a standstill.
func (m *Model) rudder(k Kinematics) Wrench {
	magnitude := m.RudderTorqueCoefficient * m.steering * math.Abs(k.ForwardSpeed())
	return Wrench{
		Torque: UpAxis.Mul(magnitude),
		Active: true,
	}
}

func (m *Model) hydrodynamics(k Kinematics) Wrench {
	if nearZero(k.Velocity) {
		return Wrench{}
	}

	forward, right := k.Forward(), k.Right()
	forwardSpeed := k.Velocity.Dot(forward)
	lateralSpeed := k.Velocity.Dot(right)

	longitudinal := forward.Mul(-m.axisDrag(forwardSpeed) * sign(forwardSpeed))
	lateral := right.Mul(-m.axisDrag(lateralSpeed) * m.LateralDragMultiplier * sign(lateralSpeed))

	drag := longitudinal.Add(lateral)
	if m.handbrake {
		drag = drag.Mul(HandbrakeDragBoost)
	}

	damping := k.AngularVelocity.Mul(-m.AngularDampingCoefficient)
	if m.handbrake {
		damping[2] -= k.AngularVelocity.Z() * m.HandbrakeAngularDamping
	}

	return Wrench{Force: drag, Torque: damping, Active: true}
}

func (m *Model) axisDrag(speed float64) float64 {
	return m.LinearWaterDragCoefficient*math.Abs(speed) + m.QuadraticWaterDragCoefficient*speed*speed
}

// Depth is how far the body sits below the water plane; negative above it.
func (m *Model) Depth(k Kinematics) float64 {
	return m.WaterLevelHeight - k.Position.Z()
}

func (m *Model) buoyancy(k Kinematics) (lift, damping Wrench) {
	depth := m.Depth(k)
	if m.OnlyApplyInWater && depth <= 0 {
		return Wrench{}, Wrench{}
	}

	force := math.Max(0, depth) * m.BuoyancyCoefficient
	if m.MaxBuoyancyForce > 0 {
		force = math.Min(force, m.MaxBuoyancyForce)
	}
	lift = Wrench{Force: UpAxis.Mul(force), Active: true}

	if m.handbrake {
		damping = Wrench{Force: k.Velocity.Mul(-m.HandbrakeLinearDamping), Active: true}
	}
	return lift, damping
}
