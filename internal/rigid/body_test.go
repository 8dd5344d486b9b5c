package rigid

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vec3AlmostEqual(a, b mgl64.Vec3, eps float64) bool {
	return almostEqual(a[0], b[0], eps) && almostEqual(a[1], b[1], eps) && almostEqual(a[2], b[2], eps)
}

func newSimulated() *Body {
	b := New(2.0, mgl64.Vec3{1, 1, 1})
	b.SimulatePhysics = true
	return b
}

func TestIntegrate_NoForces(t *testing.T) {
	b := newSimulated()
	b.Velocity = mgl64.Vec3{1, 2, 3}

	b.Integrate(0.1, mgl64.Vec3{0, 0, -9.81})

	if !vec3AlmostEqual(b.Velocity, mgl64.Vec3{1, 2, 3}, 1e-12) {
		t.Errorf("Velocity = %v, want unchanged without gravity enabled", b.Velocity)
	}
	if !vec3AlmostEqual(b.Position, mgl64.Vec3{0.1, 0.2, 0.3}, 1e-12) {
		t.Errorf("Position = %v, want dt * velocity", b.Position)
	}
}

func TestIntegrate_Gravity(t *testing.T) {
	b := newSimulated()
	b.EnableGravity = true

	b.Integrate(0.5, mgl64.Vec3{0, 0, -10})

	if !vec3AlmostEqual(b.Velocity, mgl64.Vec3{0, 0, -5}, 1e-12) {
		t.Errorf("Velocity = %v, want {0 0 -5}", b.Velocity)
	}
	// semi-implicit: position uses the updated velocity
	if !vec3AlmostEqual(b.Position, mgl64.Vec3{0, 0, -2.5}, 1e-12) {
		t.Errorf("Position = %v, want {0 0 -2.5}", b.Position)
	}
}

func TestIntegrate_AppliedForce(t *testing.T) {
	b := newSimulated()
	h := b.Handle()
	h.AddForce(mgl64.Vec3{4, 0, 0})
	h.AddForce(mgl64.Vec3{0, 2, 0})

	if !vec3AlmostEqual(b.Force(), mgl64.Vec3{4, 2, 0}, 1e-12) {
		t.Fatalf("Force = %v, want accumulated {4 2 0}", b.Force())
	}

	b.Integrate(1.0, mgl64.Vec3{})

	if !vec3AlmostEqual(b.Velocity, mgl64.Vec3{2, 1, 0}, 1e-12) {
		t.Errorf("Velocity = %v, want F/m*dt", b.Velocity)
	}
	if b.Force() != (mgl64.Vec3{}) || b.Torque() != (mgl64.Vec3{}) {
		t.Error("accumulators should be cleared after Integrate")
	}
}

func TestIntegrate_PhysicsDisabled(t *testing.T) {
	b := New(1, mgl64.Vec3{1, 1, 1})
	b.Velocity = mgl64.Vec3{1, 0, 0}
	b.Handle().AddForce(mgl64.Vec3{100, 0, 0})

	b.Integrate(0.1, mgl64.Vec3{0, 0, -9.81})

	if b.Position != (mgl64.Vec3{}) {
		t.Errorf("Position = %v, body with physics disabled must not move", b.Position)
	}
	if b.Force() != (mgl64.Vec3{}) {
		t.Error("accumulators should still be cleared")
	}
}

func TestIntegrate_YawTorque(t *testing.T) {
	b := newSimulated()
	b.Inertia = mgl64.Vec3{1, 1, 4}
	b.Handle().AddTorque(mgl64.Vec3{0, 0, 8})

	b.Integrate(0.1, mgl64.Vec3{})

	if !vec3AlmostEqual(b.AngularVelocity, mgl64.Vec3{0, 0, 0.2}, 1e-12) {
		t.Errorf("AngularVelocity = %v, want {0 0 0.2}", b.AngularVelocity)
	}

	forward := b.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
	if forward.Y() <= 0 {
		t.Errorf("positive yaw should swing the bow towards +Y, forward = %v", forward)
	}
}

func TestIntegrate_QuaternionStaysNormalized(t *testing.T) {
	b := newSimulated()
	b.AngularVelocity = mgl64.Vec3{0.3, -1.2, 2.5}

	for i := 0; i < 1000; i++ {
		b.Integrate(0.01, mgl64.Vec3{})
	}

	if !almostEqual(b.Rotation.Len(), 1, 1e-9) {
		t.Errorf("Rotation length = %v, want 1", b.Rotation.Len())
	}
}

func TestAngularAcceleration_RotatedFrame(t *testing.T) {
	b := newSimulated()
	b.Inertia = mgl64.Vec3{2, 4, 8}
	b.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	// world X maps to body -Y after a quarter turn, so the Y inertia applies
	b.Handle().AddTorque(mgl64.Vec3{4, 0, 0})

	alpha := b.AngularAcceleration()
	if !vec3AlmostEqual(alpha, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("alpha = %v, want {1 0 0}", alpha)
	}
}

func TestLoadStoreRoundTrip(t *testing.T) {
	x := []float64{1, 2, 3, 1, 0, 0, 0, 4, 5, 6, 0.1, 0.2, 0.3}
	b := New(1, mgl64.Vec3{1, 1, 1})
	b.Load(x)

	out := make([]float64, StateDim)
	b.Store(out)

	for i := range x {
		if out[i] != x[i] {
			t.Errorf("index %d: got %f, want %f", i, out[i], x[i])
		}
	}
}

func TestHandleSwitches(t *testing.T) {
	b := New(1, mgl64.Vec3{1, 1, 1})
	h := b.Handle()
	h.SetSimulatePhysics(true)
	h.SetEnableGravity(true)

	if !b.SimulatePhysics || !b.EnableGravity {
		t.Error("handle switches should toggle the body flags")
	}
}
