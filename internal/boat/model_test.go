package boat_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/boatsim/internal/boat"
	"github.com/san-kum/boatsim/internal/units"
)

var _ = Describe("Model", func() {
	var (
		m    *boat.Model
		body *fakeBody
	)

	BeforeEach(func() {
		m = boat.New()
		body = newFakeBody()
		// Above the water plane so buoyancy stays out of the way unless a test sinks it.
		body.pos = mgl64.Vec3{0, 0, 1}
		m.Bind(body)
	})

	Describe("inputs", func() {
		DescribeTable("throttle is clamped on write",
			func(in, want float64) {
				m.SetThrottle(in)
				Expect(m.Throttle()).To(Equal(want))
			},
			Entry("in range", 0.4, 0.4),
			Entry("above", 3.0, 1.0),
			Entry("below", -7.5, -1.0),
			Entry("boundary", -1.0, -1.0),
		)

		DescribeTable("steering is clamped on write",
			func(in, want float64) {
				m.SetSteering(in)
				Expect(m.Steering()).To(Equal(want))
			},
			Entry("in range", -0.25, -0.25),
			Entry("above", 1.01, 1.0),
			Entry("below", -2.0, -1.0),
		)

		It("starts at rest with the handbrake released", func() {
			fresh := boat.New()
			Expect(fresh.Throttle()).To(BeZero())
			Expect(fresh.Steering()).To(BeZero())
			Expect(fresh.Handbrake()).To(BeFalse())
		})

		It("passes NaN through unsanitized", func() {
			m.SetThrottle(math.NaN())
			Expect(math.IsNaN(m.Throttle())).To(BeTrue())
		})
	})

	Describe("ForwardSpeed", func() {
		It("projects velocity onto the forward axis", func() {
			body.vel = mgl64.Vec3{3, 4, 0}
			Expect(m.ForwardSpeed()).To(BeNumerically("~", 3, 1e-9))
		})

		It("is negative when reversing", func() {
			body.vel = mgl64.Vec3{-2, 0, 0}
			Expect(m.ForwardSpeed()).To(BeNumerically("~", -2, 1e-9))
		})

		It("follows the body's heading", func() {
			body.rot = mgl64.QuatRotate(math.Pi/2, boat.UpAxis)
			body.vel = mgl64.Vec3{0, 5, 0}
			Expect(m.ForwardSpeed()).To(BeNumerically("~", 5, 1e-9))
		})
	})

	Describe("thrust", func() {
		DescribeTable("scales the selected maximum by throttle",
			func(throttle, want float64) {
				m.SetThrottle(throttle)
				m.Tick(0.01)
				expectVec(m.LastBreakdown().Thrust.Force, mgl64.Vec3{want, 0, 0})
				expectVec(m.LastBreakdown().Thrust.Torque, mgl64.Vec3{})
			},
			Entry("full ahead", 1.0, 25000.0),
			Entry("half ahead", 0.5, 12500.0),
			Entry("idle", 0.0, 0.0),
			Entry("half astern", -0.5, -7500.0),
			Entry("full astern", -1.0, -15000.0),
		)

		It("is independent of speed", func() {
			m.SetThrottle(1)
			body.vel = mgl64.Vec3{10, 0, 0}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Thrust.Force, mgl64.Vec3{25000, 0, 0})
		})

		It("pushes along a rotated forward axis", func() {
			body.rot = mgl64.QuatRotate(math.Pi/2, boat.UpAxis)
			m.SetThrottle(1)
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Thrust.Force, mgl64.Vec3{0, 25000, 0})
		})
	})

	Describe("rudder", func() {
		It("has no authority at zero forward speed", func() {
			m.SetSteering(1)
			body.vel = mgl64.Vec3{0, 2, 0}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Rudder.Torque, mgl64.Vec3{})
		})

		It("grows with speed about the up axis", func() {
			m.SetSteering(0.5)
			body.vel = mgl64.Vec3{4, 0, 0}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Rudder.Torque, mgl64.Vec3{0, 0, 3500 * 0.5 * 4})
		})

		It("uses speed magnitude when reversing", func() {
			m.SetSteering(-1)
			body.vel = mgl64.Vec3{-3, 0, 0}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Rudder.Torque, mgl64.Vec3{0, 0, -3500 * 3})
		})
	})

	Describe("hydrodynamics", func() {
		It("is skipped below the near-zero threshold, damping included", func() {
			body.vel = mgl64.Vec3{boat.NearZeroSpeed / 2, 0, 0}
			body.angVel = mgl64.Vec3{0, 0, 1}
			m.Tick(0.01)

			hydro := m.LastBreakdown().Hydrodynamics
			Expect(hydro.Active).To(BeFalse())
			expectVec(body.totalForce(), mgl64.Vec3{})
			expectVec(body.totalTorque(), mgl64.Vec3{})
		})

		It("opposes forward motion with linear plus quadratic drag", func() {
			body.vel = mgl64.Vec3{2, 0, 0}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Hydrodynamics.Force, mgl64.Vec3{-(800*2 + 120*4), 0, 0})
		})

		It("resists sideways slip harder than forward motion", func() {
			body.vel = mgl64.Vec3{0, -1, 0}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Hydrodynamics.Force, mgl64.Vec3{0, (800 + 120) * 3, 0})
		})

		It("ignores vertical velocity in the drag decomposition", func() {
			body.vel = mgl64.Vec3{0, 0, -1}
			m.Tick(0.01)
			hydro := m.LastBreakdown().Hydrodynamics
			Expect(hydro.Active).To(BeTrue())
			expectVec(hydro.Force, mgl64.Vec3{})
		})

		It("boosts combined drag by exactly 1.5 with the handbrake", func() {
			body.vel = mgl64.Vec3{3, 1.5, 0}
			m.Tick(0.01)
			released := m.LastBreakdown().Hydrodynamics.Force

			m.SetHandbrake(true)
			m.Tick(0.01)
			held := m.LastBreakdown().Hydrodynamics.Force

			expectVec(held, released.Mul(1.5))
		})

		It("damps rotation on every axis", func() {
			body.vel = mgl64.Vec3{1, 0, 0}
			body.angVel = mgl64.Vec3{0.1, -0.2, 0.5}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Hydrodynamics.Torque, mgl64.Vec3{-120, 240, -600})
		})

		It("adds yaw-only damping with the handbrake", func() {
			m.SetHandbrake(true)
			body.vel = mgl64.Vec3{1, 0, 0}
			body.angVel = mgl64.Vec3{0.1, -0.2, 0.5}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Hydrodynamics.Torque, mgl64.Vec3{-120, 240, -600 - 1000})
		})
	})

	Describe("buoyancy", func() {
		It("is gated out above the water", func() {
			m.SetHandbrake(true)
			body.vel = mgl64.Vec3{1, 0, 0}
			m.Tick(0.01)
			Expect(m.LastBreakdown().Buoyancy.Active).To(BeFalse())
			Expect(m.LastBreakdown().HandbrakeDamping.Active).To(BeFalse())
		})

		It("still runs above water when the gate is off, with zero lift", func() {
			m.OnlyApplyInWater = false
			m.SetHandbrake(true)
			body.vel = mgl64.Vec3{1, 0, 0}
			m.Tick(0.01)
			Expect(m.LastBreakdown().Buoyancy.Active).To(BeTrue())
			expectVec(m.LastBreakdown().Buoyancy.Force, mgl64.Vec3{})
			expectVec(m.LastBreakdown().HandbrakeDamping.Force, mgl64.Vec3{-4, 0, 0})
		})

		It("lifts in proportion to depth (scenario C)", func() {
			body.pos = mgl64.Vec3{0, 0, -2}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Buoyancy.Force, mgl64.Vec3{0, 0, 120000})
		})

		It("clamps lift when configured (scenario D)", func() {
			m.MaxBuoyancyForce = 50000
			body.pos = mgl64.Vec3{0, 0, -2}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Buoyancy.Force, mgl64.Vec3{0, 0, 50000})
		})

		It("measures depth against the water level", func() {
			m.WaterLevelHeight = 3
			body.pos = mgl64.Vec3{0, 0, 2.5}
			m.Tick(0.01)
			expectVec(m.LastBreakdown().Buoyancy.Force, mgl64.Vec3{0, 0, 30000})
		})

		It("layers full 3-axis handbrake damping on top of drag", func() {
			m.SetHandbrake(true)
			body.pos = mgl64.Vec3{0, 0, -1}
			body.vel = mgl64.Vec3{2, 1, -0.5}
			m.Tick(0.01)
			b := m.LastBreakdown()
			Expect(b.Hydrodynamics.Active).To(BeTrue())
			expectVec(b.HandbrakeDamping.Force, mgl64.Vec3{-8, -4, 2})
		})
	})

	Describe("Tick", func() {
		It("produces full forward thrust from rest (scenario A)", func() {
			m.SetThrottle(1)
			body.pos = mgl64.Vec3{0, 0, -0.5}
			m.Tick(0.01)

			expectVec(body.totalForce(), mgl64.Vec3{25000, 0, 30000})
			expectVec(body.totalTorque(), mgl64.Vec3{})
			Expect(m.LastBreakdown().Hydrodynamics.Active).To(BeFalse())
		})

		It("reverses at half astern (scenario B)", func() {
			m.MaxReverseThrust = 15000
			m.SetThrottle(-0.5)
			m.Tick(0.01)
			expectVec(body.totalForce(), mgl64.Vec3{-7500, 0, 0})
		})

		It("applies each active stage once", func() {
			body.pos = mgl64.Vec3{0, 0, -1}
			body.vel = mgl64.Vec3{1, 0, 0}
			m.SetHandbrake(true)
			m.Tick(0.01)
			// thrust, rudder, hydrodynamics, buoyancy, handbrake damping
			Expect(body.forces).To(HaveLen(5))
			Expect(body.torques).To(HaveLen(5))
		})

		It("matches Compute on the same snapshot", func() {
			body.pos = mgl64.Vec3{0, 0, -0.3}
			body.vel = mgl64.Vec3{2, 0.5, 0}
			body.angVel = mgl64.Vec3{0, 0, 0.2}
			m.SetThrottle(0.7)
			m.SetSteering(0.3)

			want, wantTorque := m.Compute(boat.Snapshot(body)).Total()
			m.Tick(0.01)

			expectVec(body.totalForce(), want)
			expectVec(body.totalTorque(), wantTorque)
		})

		It("never moves the body", func() {
			body.vel = mgl64.Vec3{1, 2, 3}
			m.SetThrottle(1)
			m.Tick(0.5)
			expectVec(body.vel, mgl64.Vec3{1, 2, 3})
			expectVec(body.pos, mgl64.Vec3{0, 0, 1})
		})
	})

	Describe("without a body (scenario E)", func() {
		It("reports zero speed and ticks as a no-op", func() {
			unbound := boat.New()
			unbound.SetThrottle(1)
			Expect(unbound.ForwardSpeed()).To(BeZero())
			Expect(func() { unbound.Tick(0.01) }).NotTo(Panic())
			Expect(unbound.LastBreakdown().Thrust.Active).To(BeFalse())
		})
	})

	Describe("Setup", func() {
		It("enables physics and gravity on the body", func() {
			m.Setup()
			Expect(body.simulate).To(BeTrue())
			Expect(body.gravity).To(BeTrue())
		})
	})

	Describe("params", func() {
		It("round-trips through SetParam", func() {
			Expect(m.SetParam("rudder_torque", 4200)).To(Succeed())
			Expect(m.SetParam("only_in_water", 0)).To(Succeed())
			Expect(m.RudderTorqueCoefficient).To(Equal(4200.0))
			Expect(m.OnlyApplyInWater).To(BeFalse())
			Expect(m.GetParams()).To(HaveKeyWithValue("rudder_torque", 4200.0))
		})

		It("rejects unknown names", func() {
			Expect(m.SetParam("keel_depth", 1)).To(MatchError(ContainSubstring("unknown param")))
		})
	})
})

var _ = Describe("ScaledBody", func() {
	It("converts a centimeter host to SI and back", func() {
		host := newFakeBody()
		host.pos = mgl64.Vec3{0, 0, -200}
		host.vel = mgl64.Vec3{100, 0, 0}

		m := boat.New()
		m.Bind(boat.ScaledBody{Host: host, Scale: units.Centimeters})

		Expect(m.ForwardSpeed()).To(BeNumerically("~", 1, 1e-9))

		m.Tick(0.01)
		b := m.LastBreakdown()
		expectVec(b.Buoyancy.Force, mgl64.Vec3{0, 0, 120000})
		// host receives kg·cm/s²
		expectVec(host.forces[3], mgl64.Vec3{0, 0, 120000 * 100})
	})

	It("scales torque by the square of the length unit", func() {
		host := newFakeBody()
		host.pos = mgl64.Vec3{0, 0, 100}
		host.vel = mgl64.Vec3{200, 0, 0}

		m := boat.New()
		m.Bind(boat.ScaledBody{Host: host, Scale: units.Centimeters})
		m.SetSteering(1)
		m.Tick(0.01)

		expectVec(host.torques[1], mgl64.Vec3{0, 0, 3500 * 2 * 1e4})
	})

	It("forwards setup switches to the host", func() {
		host := newFakeBody()
		m := boat.New()
		m.Bind(boat.ScaledBody{Host: host, Scale: units.Centimeters})
		m.Setup()
		Expect(host.simulate).To(BeTrue())
		Expect(host.gravity).To(BeTrue())
	})
})
