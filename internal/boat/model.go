package boat

import "github.com/go-gl/mathgl/mgl64"

const (
	// NearZeroSpeed is the per-component velocity (m/s) below which the hull
	// produces no drag and no angular damping.
	NearZeroSpeed = 1e-4

	// HandbrakeDragBoost multiplies the combined hull drag while the handbrake is held.
	HandbrakeDragBoost = 1.5
)

// Coefficients are the tunable physical constants of a hull. They may be edited
// between ticks.
type Coefficients struct {
	MaxForwardThrust              float64 // N
	MaxReverseThrust              float64 // N
	RudderTorqueCoefficient       float64 // N·m per unit steer per m/s
	LinearWaterDragCoefficient    float64 // N per m/s
	QuadraticWaterDragCoefficient float64 // N per (m/s)²
	LateralDragMultiplier         float64
	AngularDampingCoefficient     float64 // N·m per rad/s
	BuoyancyCoefficient           float64 // N per meter submerged
	MaxBuoyancyForce              float64 // N, 0 disables the clamp
	WaterLevelHeight              float64 // m
	OnlyApplyInWater              bool
	HandbrakeLinearDamping        float64 // N per m/s
	HandbrakeAngularDamping       float64 // N·m per rad/s, yaw only
}

func DefaultCoefficients() Coefficients {
	return Coefficients{
		MaxForwardThrust:              25000,
		MaxReverseThrust:              15000,
		RudderTorqueCoefficient:       3500,
		LinearWaterDragCoefficient:    800,
		QuadraticWaterDragCoefficient: 120,
		LateralDragMultiplier:         3,
		AngularDampingCoefficient:     1200,
		BuoyancyCoefficient:           60000,
		MaxBuoyancyForce:              0,
		WaterLevelHeight:              0,
		OnlyApplyInWater:              true,
		HandbrakeLinearDamping:        4,
		HandbrakeAngularDamping:       2000,
	}
}

// Model turns pilot inputs and a body's kinematics into forces and torques.
type Model struct {
	Coefficients

	throttle  float64
	steering  float64
	handbrake bool

	body Body
	last Breakdown
}

func New() *Model {
	return &Model{Coefficients: DefaultCoefficients()}
}

// NewWithCoefficients creates a model with the given tuning.
func NewWithCoefficients(c Coefficients) *Model {
	return &Model{Coefficients: c}
}

// Bind attaches the body the model drives. A nil body detaches it.
func (m *Model) Bind(b Body) { m.body = b }

func (m *Model) Body() Body { return m.body }

// Setup enables physics simulation and gravity on the bound body, when the
// body supports toggling them. Call once after Bind.
func (m *Model) Setup() {
	if s, ok := m.body.(PhysicsSwitch); ok {
		s.SetSimulatePhysics(true)
		s.SetEnableGravity(true)
	}
}

func (m *Model) SetThrottle(v float64) { m.throttle = clamp(v, -1, 1) }
func (m *Model) SetSteering(v float64) { m.steering = clamp(v, -1, 1) }
func (m *Model) SetHandbrake(b bool)   { m.handbrake = b }

func (m *Model) Throttle() float64 { return m.throttle }
func (m *Model) Steering() float64 { return m.steering }
func (m *Model) Handbrake() bool   { return m.handbrake }

// ForwardSpeed returns the body's signed speed along its forward axis in m/s,
// or 0 when no body is bound.
func (m *Model) ForwardSpeed() float64 {
	if m.body == nil {
		return 0
	}
	return Snapshot(m.body).ForwardSpeed()
}

// Tick reads the body once and applies every active stage. dt is accepted for
// the host's scheduling contract; the force model itself is rate independent.
func (m *Model) Tick(dt float64) {
	if m.body == nil {
		return
	}

	b := m.Compute(Snapshot(m.body))
	for _, w := range b.Stages() {
		if !w.Active {
			continue
		}
		m.body.AddForce(w.Force)
		m.body.AddTorque(w.Torque)
	}
	m.last = b
}

// Advance is the driver entry point; it is Tick under the name hosts schedule.
func (m *Model) Advance(dt float64) { m.Tick(dt) }

// LastBreakdown returns the contributions applied by the most recent tick.
func (m *Model) LastBreakdown() Breakdown { return m.last }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func nearZero(v mgl64.Vec3) bool {
	for _, c := range v {
		if c > NearZeroSpeed || c < -NearZeroSpeed {
			return false
		}
	}
	return true
}
