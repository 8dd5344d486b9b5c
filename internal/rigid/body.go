// Package rigid is a minimal host-side rigid body: it stores kinematics,
// accumulates applied forces and torques, and integrates them.
package rigid

import (
	"github.com/go-gl/mathgl/mgl64"
)

// StateDim is the length of the flat state layout used by Load and Store:
// position (3), rotation quaternion w,x,y,z (4), velocity (3), angular velocity (3).
const StateDim = 13

const (
	IdxPosX = iota
	IdxPosY
	IdxPosZ
	IdxRotW
	IdxRotX
	IdxRotY
	IdxRotZ
	IdxVelX
	IdxVelY
	IdxVelZ
	IdxAngX
	IdxAngY
	IdxAngZ
)

// Body is a single rigid body with a diagonal body-frame inertia tensor.
// Angular velocity is expressed in the world frame.
type Body struct {
	Mass    float64
	Inertia mgl64.Vec3

	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	SimulatePhysics bool
	EnableGravity   bool

	force  mgl64.Vec3
	torque mgl64.Vec3
}

func New(mass float64, inertia mgl64.Vec3) *Body {
	return &Body{
		Mass:     mass,
		Inertia:  inertia,
		Rotation: mgl64.QuatIdent(),
	}
}

// Handle exposes the body through the query/apply surface the boat model uses.
// It is a separate type so the exported fields above do not clash with the
// query method names.
func (b *Body) Handle() *Handle { return &Handle{b: b} }

// Handle is the boat.Body view of a rigid Body.
type Handle struct {
	b *Body
}

func (h *Handle) Position() mgl64.Vec3        { return h.b.Position }
func (h *Handle) Rotation() mgl64.Quat        { return h.b.Rotation }
func (h *Handle) Velocity() mgl64.Vec3        { return h.b.Velocity }
func (h *Handle) AngularVelocity() mgl64.Vec3 { return h.b.AngularVelocity }
func (h *Handle) AddForce(f mgl64.Vec3)       { h.b.force = h.b.force.Add(f) }
func (h *Handle) AddTorque(t mgl64.Vec3)      { h.b.torque = h.b.torque.Add(t) }
func (h *Handle) SetSimulatePhysics(on bool)  { h.b.SimulatePhysics = on }
func (h *Handle) SetEnableGravity(on bool)    { h.b.EnableGravity = on }

// Force returns the accumulated force since the last clear.
func (b *Body) Force() mgl64.Vec3 { return b.force }

// Torque returns the accumulated torque since the last clear.
func (b *Body) Torque() mgl64.Vec3 { return b.torque }

func (b *Body) ClearAccumulators() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// LinearAcceleration is F/m plus gravity when enabled.
func (b *Body) LinearAcceleration(gravity mgl64.Vec3) mgl64.Vec3 {
	var acc mgl64.Vec3
	if b.Mass > 0 {
		acc = b.force.Mul(1 / b.Mass)
	}
	if b.EnableGravity {
		acc = acc.Add(gravity)
	}
	return acc
}

// AngularAcceleration solves Euler's rotation equations in the body frame and
// returns the result in the world frame.
func (b *Body) AngularAcceleration() mgl64.Vec3 {
	inv := b.Rotation.Conjugate()
	torque := inv.Rotate(b.torque)
	omega := inv.Rotate(b.AngularVelocity)

	iw := mgl64.Vec3{b.Inertia.X() * omega.X(), b.Inertia.Y() * omega.Y(), b.Inertia.Z() * omega.Z()}
	net := torque.Sub(omega.Cross(iw))

	var alpha mgl64.Vec3
	for i := range alpha {
		if b.Inertia[i] > 0 {
			alpha[i] = net[i] / b.Inertia[i]
		}
	}
	return b.Rotation.Rotate(alpha)
}

// RotationRate is dq/dt = ½ ω ⊗ q for a world-frame ω.
func RotationRate(q mgl64.Quat, omega mgl64.Vec3) mgl64.Quat {
	w := mgl64.Quat{W: 0, V: omega}
	return w.Mul(q).Scale(0.5)
}

// Integrate advances the body by dt with semi-implicit Euler and clears the
// accumulators. Bodies with physics disabled keep their kinematics.
func (b *Body) Integrate(dt float64, gravity mgl64.Vec3) {
	if !b.SimulatePhysics {
		b.ClearAccumulators()
		return
	}

	b.Velocity = b.Velocity.Add(b.LinearAcceleration(gravity).Mul(dt))
	b.AngularVelocity = b.AngularVelocity.Add(b.AngularAcceleration().Mul(dt))

	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.Rotation = b.Rotation.Add(RotationRate(b.Rotation, b.AngularVelocity).Scale(dt)).Normalize()

	b.ClearAccumulators()
}

// Load copies a flat state vector into the body.
func (b *Body) Load(x []float64) {
	b.Position = mgl64.Vec3{x[IdxPosX], x[IdxPosY], x[IdxPosZ]}
	b.Rotation = mgl64.Quat{W: x[IdxRotW], V: mgl64.Vec3{x[IdxRotX], x[IdxRotY], x[IdxRotZ]}}
	b.Velocity = mgl64.Vec3{x[IdxVelX], x[IdxVelY], x[IdxVelZ]}
	b.AngularVelocity = mgl64.Vec3{x[IdxAngX], x[IdxAngY], x[IdxAngZ]}
}

// Store writes the body's kinematics into a flat state vector.
func (b *Body) Store(x []float64) {
	x[IdxPosX], x[IdxPosY], x[IdxPosZ] = b.Position[0], b.Position[1], b.Position[2]
	x[IdxRotW] = b.Rotation.W
	x[IdxRotX], x[IdxRotY], x[IdxRotZ] = b.Rotation.V[0], b.Rotation.V[1], b.Rotation.V[2]
	x[IdxVelX], x[IdxVelY], x[IdxVelZ] = b.Velocity[0], b.Velocity[1], b.Velocity[2]
	x[IdxAngX], x[IdxAngY], x[IdxAngZ] = b.AngularVelocity[0], b.AngularVelocity[1], b.AngularVelocity[2]
}
