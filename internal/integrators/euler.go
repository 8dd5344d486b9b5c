package integrators

import "github.com/san-kum/boatsim/internal/dynamo"

// Euler is the explicit first-order method. Cheap, and the closest match to a
// game engine's per-frame force accumulation.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := sys.Derive(x, u, t)
	return axpy(make(dynamo.State, len(x)), x, dt, dx)
}

// axpy writes x + a*y into dst and returns it.
func axpy(dst, x dynamo.State, a float64, y dynamo.State) dynamo.State {
	for i := range x {
		dst[i] = x[i] + a*y[i]
	}
	return dst
}

// New resolves an integrator by its CLI name.
func New(name string) (dynamo.Integrator, bool) {
	switch name {
	case "euler":
		return NewEuler(), true
	case "rk4", "":
		return NewRK4(), true
	case "rk45":
		return NewRK45(), true
	}
	return nil, false
}

// Names lists the integrators New understands.
func Names() []string {
	return []string{"euler", "rk4", "rk45"}
}
