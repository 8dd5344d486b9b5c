package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/boat"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/rigid"
	"github.com/san-kum/boatsim/internal/units"
)

const (
	DefaultGravity = 9.81
	DefaultMass    = 2000.0
)

// Control vector layout for Vessel.
const (
	CtrlThrottle = iota
	CtrlSteering
	CtrlHandbrake
)

// Column names for the state and control vectors.
var (
	StateNames   = []string{"px", "py", "pz", "qw", "qx", "qy", "qz", "vx", "vy", "vz", "wx", "wy", "wz"}
	ControlNames = []string{"throttle", "steering", "handbrake"}
)

// Hull is the rigid body a boat model is mounted on. Mass and inertia are SI;
// Unit selects the length unit of the state vector.
type Hull struct {
	Mass    float64     `yaml:"mass" json:"mass"`
	Inertia mgl64.Vec3  `yaml:"inertia" json:"inertia"`
	Gravity float64     `yaml:"gravity" json:"gravity"`
	Unit    units.Scale `yaml:"unit" json:"unit"`
}

// DefaultHull is a 6 m runabout.
func DefaultHull() Hull {
	return Hull{
		Mass:    DefaultMass,
		Inertia: mgl64.Vec3{1200, 6200, 7000},
		Gravity: DefaultGravity,
		Unit:    units.Meters,
	}
}

// Vessel integrates a boat.Model on a rigid hull. The state is
// rigid.StateDim long in host units; the control is
// [throttle, steering, handbrake].
//
// Derive reuses a scratch body, so a Vessel must not be shared between
// goroutines.
type Vessel struct {
	Hull  Hull
	Model *boat.Model

	body   *rigid.Body
	scaled *boat.ScaledBody
}

func NewVessel(hull Hull, model *boat.Model) *Vessel {
	if hull.Unit == 0 {
		hull.Unit = units.Meters
	}
	body := rigid.New(hull.Mass, mgl64.Vec3{})
	scaled := &boat.ScaledBody{Host: body.Handle(), Scale: hull.Unit}

	v := &Vessel{Hull: hull, Model: model, body: body, scaled: scaled}
	model.Bind(scaled)
	model.Setup()
	return v
}

func (v *Vessel) StateDim() int   { return rigid.StateDim }
func (v *Vessel) ControlDim() int { return 3 }

func (v *Vessel) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	v.sync()
	v.applyControls(u)
	v.body.Load(x)

	v.Model.Tick(0)

	dx := make(dynamo.State, rigid.StateDim)
	if !v.body.SimulatePhysics {
		v.body.ClearAccumulators()
		return dx
	}

	gravity := mgl64.Vec3{0, 0, -v.Hull.Unit.LengthFromSI(v.Hull.Gravity)}
	acc := v.body.LinearAcceleration(gravity)
	alpha := v.body.AngularAcceleration()
	qdot := rigid.RotationRate(v.body.Rotation, v.body.AngularVelocity)
	v.body.ClearAccumulators()

	dx[rigid.IdxPosX], dx[rigid.IdxPosY], dx[rigid.IdxPosZ] = x[rigid.IdxVelX], x[rigid.IdxVelY], x[rigid.IdxVelZ]
	dx[rigid.IdxRotW] = qdot.W
	dx[rigid.IdxRotX], dx[rigid.IdxRotY], dx[rigid.IdxRotZ] = qdot.V[0], qdot.V[1], qdot.V[2]
	dx[rigid.IdxVelX], dx[rigid.IdxVelY], dx[rigid.IdxVelZ] = acc[0], acc[1], acc[2]
	dx[rigid.IdxAngX], dx[rigid.IdxAngY], dx[rigid.IdxAngZ] = alpha[0], alpha[1], alpha[2]
	return dx
}

// Project renormalises the orientation quaternion.
func (v *Vessel) Project(x dynamo.State) dynamo.State {
	q := rotation(x)
	n := q.Len()
	if n == 0 {
		return x
	}
	x[rigid.IdxRotW] /= n
	x[rigid.IdxRotX] /= n
	x[rigid.IdxRotY] /= n
	x[rigid.IdxRotZ] /= n
	return x
}

// Energy is kinetic plus gravitational plus buoyancy spring energy, in joules.
func (v *Vessel) Energy(x dynamo.State) float64 {
	ke := v.KineticEnergy(x)
	z := v.Hull.Unit.LengthToSI(x[rigid.IdxPosZ])
	pe := v.Hull.Mass * v.Hull.Gravity * z
	if d := v.Depth(x); d > 0 {
		pe += v.buoyancyPotential(d)
	}
	return ke + pe
}

// buoyancyPotential is the work done against buoyancy sinking to depth d: a
// spring up to the depth where the force reaches MaxBuoyancyForce, constant
// force beyond it.
func (v *Vessel) buoyancyPotential(d float64) float64 {
	k := v.Model.BuoyancyCoefficient
	fmax := v.Model.MaxBuoyancyForce
	if fmax <= 0 || k <= 0 || k*d <= fmax {
		return 0.5 * k * d * d
	}
	knee := fmax / k
	return 0.5*fmax*knee + fmax*(d-knee)
}

// KineticEnergy is translational plus rotational kinetic energy in joules.
func (v *Vessel) KineticEnergy(x dynamo.State) float64 {
	vel := v.Velocity(x)
	ke := 0.5 * v.Hull.Mass * vel.Dot(vel)

	omega := rotation(x).Conjugate().Rotate(angularVelocity(x))
	for i := range omega {
		ke += 0.5 * v.Hull.Inertia[i] * omega[i] * omega[i]
	}
	return ke
}

// InitialState places the hull at (px, py) floating at its equilibrium draft,
// heading radians from +X towards +Y, moving forward at speed m/s.
func (v *Vessel) InitialState(px, py, heading, speed float64) dynamo.State {
	q := mgl64.QuatRotate(heading, boat.UpAxis)
	vel := q.Rotate(boat.ForwardAxis).Mul(v.Hull.Unit.LengthFromSI(speed))
	z := v.Model.WaterLevelHeight - v.EquilibriumDraft()

	x := make(dynamo.State, rigid.StateDim)
	x[rigid.IdxPosX] = v.Hull.Unit.LengthFromSI(px)
	x[rigid.IdxPosY] = v.Hull.Unit.LengthFromSI(py)
	x[rigid.IdxPosZ] = v.Hull.Unit.LengthFromSI(z)
	x[rigid.IdxRotW] = q.W
	x[rigid.IdxRotX], x[rigid.IdxRotY], x[rigid.IdxRotZ] = q.V[0], q.V[1], q.V[2]
	x[rigid.IdxVelX], x[rigid.IdxVelY], x[rigid.IdxVelZ] = vel[0], vel[1], vel[2]
	return x
}

// EquilibriumDraft is the depth in meters at which buoyancy carries the hull's
// weight. Zero when buoyancy is disabled.
func (v *Vessel) EquilibriumDraft() float64 {
	if v.Model.BuoyancyCoefficient <= 0 {
		return 0
	}
	weight := v.Hull.Mass * v.Hull.Gravity
	if v.Model.MaxBuoyancyForce > 0 && weight > v.Model.MaxBuoyancyForce {
		return 0
	}
	return weight / v.Model.BuoyancyCoefficient
}

// Position returns the hull position in meters.
func (v *Vessel) Position(x dynamo.State) mgl64.Vec3 {
	return mgl64.Vec3{
		v.Hull.Unit.LengthToSI(x[rigid.IdxPosX]),
		v.Hull.Unit.LengthToSI(x[rigid.IdxPosY]),
		v.Hull.Unit.LengthToSI(x[rigid.IdxPosZ]),
	}
}

// Velocity returns the hull velocity in m/s.
func (v *Vessel) Velocity(x dynamo.State) mgl64.Vec3 {
	return mgl64.Vec3{
		v.Hull.Unit.LengthToSI(x[rigid.IdxVelX]),
		v.Hull.Unit.LengthToSI(x[rigid.IdxVelY]),
		v.Hull.Unit.LengthToSI(x[rigid.IdxVelZ]),
	}
}

// Heading is the yaw of the bow in radians, measured from +X towards +Y.
func (v *Vessel) Heading(x dynamo.State) float64 {
	f := rotation(x).Rotate(boat.ForwardAxis)
	return math.Atan2(f.Y(), f.X())
}

// YawRate is the world-frame angular velocity about up, rad/s.
func (v *Vessel) YawRate(x dynamo.State) float64 {
	return x[rigid.IdxAngZ]
}

// Upright is the world Z component of the hull's up axis: 1 level, 0 on its
// beam ends, negative capsized.
func (v *Vessel) Upright(x dynamo.State) float64 {
	return rotation(x).Rotate(boat.UpAxis).Z()
}

// Speed is the horizontal speed over ground in m/s.
func (v *Vessel) Speed(x dynamo.State) float64 {
	vel := v.Velocity(x)
	return math.Hypot(vel.X(), vel.Y())
}

// ForwardSpeed is the signed speed along the bow in m/s.
func (v *Vessel) ForwardSpeed(x dynamo.State) float64 {
	return v.kinematics(x).ForwardSpeed()
}

// Depth is how far the hull origin sits below the water level, in meters.
func (v *Vessel) Depth(x dynamo.State) float64 {
	return v.Model.Depth(v.kinematics(x))
}

// LoadState points the model's body at x so model queries such as
// ForwardSpeed read that state between integration steps.
func (v *Vessel) LoadState(x dynamo.State) {
	v.sync()
	v.body.Load(x)
}

// Breakdown evaluates the boat model's stages at x with control u, in SI,
// without advancing anything.
func (v *Vessel) Breakdown(x dynamo.State, u dynamo.Control) boat.Breakdown {
	m := v.Model
	throttle, steering, handbrake := m.Throttle(), m.Steering(), m.Handbrake()
	defer func() {
		m.SetThrottle(throttle)
		m.SetSteering(steering)
		m.SetHandbrake(handbrake)
	}()

	v.applyControls(u)
	return m.Compute(v.kinematics(x))
}

func (v *Vessel) kinematics(x dynamo.State) boat.Kinematics {
	return boat.Kinematics{
		Position:        v.Position(x),
		Rotation:        rotation(x),
		Velocity:        v.Velocity(x),
		AngularVelocity: angularVelocity(x),
	}
}

func (v *Vessel) applyControls(u dynamo.Control) {
	if len(u) > CtrlThrottle {
		v.Model.SetThrottle(u[CtrlThrottle])
	}
	if len(u) > CtrlSteering {
		v.Model.SetSteering(u[CtrlSteering])
	}
	if len(u) > CtrlHandbrake {
		v.Model.SetHandbrake(u[CtrlHandbrake] >= 0.5)
	}
}

// sync pushes hull parameters into the scratch body in host units.
func (v *Vessel) sync() {
	v.body.Mass = v.Hull.Mass
	s := float64(v.Hull.Unit)
	v.body.Inertia = v.Hull.Inertia.Mul(1 / (s * s))
	v.scaled.Scale = v.Hull.Unit
}

func (v *Vessel) GetParams() map[string]float64 {
	params := v.Model.GetParams()
	params["mass"] = v.Hull.Mass
	params["inertia_roll"] = v.Hull.Inertia[0]
	params["inertia_pitch"] = v.Hull.Inertia[1]
	params["inertia_yaw"] = v.Hull.Inertia[2]
	params["gravity"] = v.Hull.Gravity
	return params
}

func (v *Vessel) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		if value <= 0 {
			return fmt.Errorf("%w: mass must be positive, got %f", dynamo.ErrParameterBounds, value)
		}
		v.Hull.Mass = value
	case "inertia_roll":
		v.Hull.Inertia[0] = value
	case "inertia_pitch":
		v.Hull.Inertia[1] = value
	case "inertia_yaw":
		v.Hull.Inertia[2] = value
	case "gravity":
		v.Hull.Gravity = value
	default:
		if err := v.Model.SetParam(name, value); err != nil {
			return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
		}
	}
	return nil
}

func rotation(x dynamo.State) mgl64.Quat {
	return mgl64.Quat{W: x[rigid.IdxRotW], V: mgl64.Vec3{x[rigid.IdxRotX], x[rigid.IdxRotY], x[rigid.IdxRotZ]}}
}

func angularVelocity(x dynamo.State) mgl64.Vec3 {
	return mgl64.Vec3{x[rigid.IdxAngX], x[rigid.IdxAngY], x[rigid.IdxAngZ]}
}
