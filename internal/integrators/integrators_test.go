package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// coasting is a hull decelerating under linear drag: v' = -c v, x' = v.
type coasting struct{ c float64 }

func (s *coasting) StateDim() int   { return 2 }
func (s *coasting) ControlDim() int { return 0 }

func (s *coasting) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -s.c * x[1]}
}

// exact returns the closed form position and velocity at time t from (0, v0).
func (s *coasting) exact(v0, t float64) (float64, float64) {
	v := v0 * math.Exp(-s.c*t)
	return (v0 - v) / s.c, v
}

// yawSpring is an undamped heading oscillator used to check phase accuracy.
type yawSpring struct{}

func (h *yawSpring) StateDim() int   { return 2 }
func (h *yawSpring) ControlDim() int { return 0 }

func (h *yawSpring) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *yawSpring) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestCoastingAccuracy(t *testing.T) {
	sys := &coasting{c: 0.5}
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 5e-2},
		{"rk4", NewRK4(), 1e-6},
		{"rk45", NewRK45(), 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{0, 4}
			dt := 0.05
			steps := 200
			for i := 0; i < steps; i++ {
				x = tt.integ.Step(sys, x, nil, float64(i)*dt, dt)
			}

			wantPos, wantVel := sys.exact(4, float64(steps)*dt)
			if math.Abs(x[0]-wantPos) > tt.tol*10 {
				t.Errorf("position: got %.6f, want %.6f", x[0], wantPos)
			}
			if math.Abs(x[1]-wantVel) > tt.tol {
				t.Errorf("velocity: got %.6f, want %.6f", x[1], wantVel)
			}
		})
	}
}

func TestRK4Accuracy(t *testing.T) {
	sys := &yawSpring{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("heading error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("yaw rate error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerDoesNotMutateInput(t *testing.T) {
	x := dynamo.State{0, 2}
	NewEuler().Step(&coasting{c: 1}, x, nil, 0, 0.1)
	if x[0] != 0 || x[1] != 2 {
		t.Errorf("input state mutated: %v", x)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		if _, ok := New(name); !ok {
			t.Errorf("New(%q) not found", name)
		}
	}
	if _, ok := New("verlet"); ok {
		t.Error("New(\"verlet\") should be unknown")
	}
}
