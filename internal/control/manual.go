package control

import (
	"sync"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// Manual holds pilot inputs set from outside the simulation loop, e.g. a
// line-oriented input stream. It is safe for concurrent use.
type Manual struct {
	mu        sync.RWMutex
	throttle  float64
	steering  float64
	handbrake bool
}

func NewManual(throttle, steering float64, handbrake bool) *Manual {
	m := &Manual{}
	m.Set(throttle, steering, handbrake)
	return m
}

// Set replaces the held inputs. Axes are clamped to [-1, 1].
func (m *Manual) Set(throttle, steering float64, handbrake bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttle = clampUnit(throttle)
	m.steering = clampUnit(steering)
	m.handbrake = handbrake
}

// SetControl updates the inputs from a control vector. Short vectors leave the
// missing channels untouched.
func (m *Manual) SetControl(u []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(u) > 0 {
		m.throttle = clampUnit(u[0])
	}
	if len(u) > 1 {
		m.steering = clampUnit(u[1])
	}
	if len(u) > 2 {
		m.handbrake = u[2] >= 0.5
	}
}

func (m *Manual) Compute(x dynamo.State, t float64) dynamo.Control {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return dynamo.Control{m.throttle, m.steering, boolToAxis(m.handbrake)}
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolToAxis(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
