package boat

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/units"
)

// Body-frame axes: X forward, Y right, Z up. A positive rotation about Z turns
// the bow towards starboard.
var (
	ForwardAxis = mgl64.Vec3{1, 0, 0}
	RightAxis   = mgl64.Vec3{0, 1, 0}
	UpAxis      = mgl64.Vec3{0, 0, 1}
)

// Body is the externally owned rigid body the model drives. Queries are read once
// per tick; AddForce and AddTorque accumulate at the center of mass and the host
// integrates them.
type Body interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	Velocity() mgl64.Vec3
	AngularVelocity() mgl64.Vec3
	AddForce(force mgl64.Vec3)
	AddTorque(torque mgl64.Vec3)
}

// PhysicsSwitch is implemented by bodies whose simulation can be toggled by the
// host. The model flips both on once during Setup.
type PhysicsSwitch interface {
	SetSimulatePhysics(enabled bool)
	SetEnableGravity(enabled bool)
}

// Kinematics is a read-only snapshot of a body for a single tick.
type Kinematics struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// Snapshot queries every kinematic quantity from b.
func Snapshot(b Body) Kinematics {
	return Kinematics{
		Position:        b.Position(),
		Rotation:        b.Rotation(),
		Velocity:        b.Velocity(),
		AngularVelocity: b.AngularVelocity(),
	}
}

func (k Kinematics) rotation() mgl64.Quat {
	if k.Rotation.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return k.Rotation
}

func (k Kinematics) Forward() mgl64.Vec3 { return k.rotation().Rotate(ForwardAxis) }
func (k Kinematics) Right() mgl64.Vec3   { return k.rotation().Rotate(RightAxis) }
func (k Kinematics) Up() mgl64.Vec3      { return k.rotation().Rotate(UpAxis) }

// ForwardSpeed is the signed projection of velocity onto the forward axis.
func (k Kinematics) ForwardSpeed() float64 {
	return k.Velocity.Dot(k.Forward())
}

// ScaledBody adapts a host body measured in a non-SI length unit. Positions and
// velocities are converted to meters on read; forces and torques are converted
// to host units on write. Angular quantities pass through unchanged.
type ScaledBody struct {
	Host  Body
	Scale units.Scale
}

func (b ScaledBody) Position() mgl64.Vec3 {
	return b.Host.Position().Mul(b.Scale.LengthToSI(1))
}

func (b ScaledBody) Rotation() mgl64.Quat { return b.Host.Rotation() }

func (b ScaledBody) Velocity() mgl64.Vec3 {
	return b.Host.Velocity().Mul(b.Scale.LengthToSI(1))
}

func (b ScaledBody) AngularVelocity() mgl64.Vec3 { return b.Host.AngularVelocity() }

func (b ScaledBody) AddForce(force mgl64.Vec3) {
	b.Host.AddForce(force.Mul(b.Scale.ForceFromSI(1)))
}

func (b ScaledBody) AddTorque(torque mgl64.Vec3) {
	b.Host.AddTorque(torque.Mul(b.Scale.TorqueFromSI(1)))
}

func (b ScaledBody) SetSimulatePhysics(enabled bool) {
	if s, ok := b.Host.(PhysicsSwitch); ok {
		s.SetSimulatePhysics(enabled)
	}
}

func (b ScaledBody) SetEnableGravity(enabled bool) {
	if s, ok := b.Host.(PhysicsSwitch); ok {
		s.SetEnableGravity(enabled)
	}
}
