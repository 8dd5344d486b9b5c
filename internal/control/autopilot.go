package control

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// Navigator reads the quantities the autopilot steers on.
type Navigator interface {
	Heading(x dynamo.State) float64
	ForwardSpeed(x dynamo.State) float64
}

// StopBrakeSpeed is the speed, m/s ahead or astern, above which an autopilot
// told to stop pulls the handbrake.
const StopBrakeSpeed = 0.5

// Autopilot holds a heading (radians, +X towards +Y) and a forward speed
// (m/s). A zero target speed is a stop command: the handbrake is pulled until
// the hull, moving either way, drops below StopBrakeSpeed.
type Autopilot struct {
	nav     Navigator
	Heading *PID
	Speed   *PID
}

func NewAutopilot(nav Navigator, heading, speed float64) *Autopilot {
	return &Autopilot{
		nav:     nav,
		Heading: NewPID(1.2, 0.05, 0.8, heading),
		Speed:   NewPID(0.6, 0.1, 0, speed),
	}
}

func (a *Autopilot) Compute(x dynamo.State, t float64) dynamo.Control {
	headingErr := WrapAngle(a.Heading.Target - a.nav.Heading(x))
	steering := a.Heading.UpdateError(headingErr, t)
	speed := a.nav.ForwardSpeed(x)
	if a.Speed.Target == 0 && math.Abs(speed) > StopBrakeSpeed {
		return dynamo.Control{0, steering, 1}
	}
	throttle := a.Speed.Update(speed, t)
	return dynamo.Control{throttle, steering, 0}
}

func (a *Autopilot) Reset() {
	a.Heading.Reset()
	a.Speed.Reset()
}

func (a *Autopilot) GetParams() map[string]float64 {
	params := make(map[string]float64)
	for k, v := range a.Heading.GetParams() {
		params["heading_"+k] = v
	}
	for k, v := range a.Speed.GetParams() {
		params["speed_"+k] = v
	}
	return params
}

func (a *Autopilot) SetParam(name string, value float64) error {
	switch {
	case strings.HasPrefix(name, "heading_"):
		return a.Heading.SetParam(strings.TrimPrefix(name, "heading_"), value)
	case strings.HasPrefix(name, "speed_"):
		return a.Speed.SetParam(strings.TrimPrefix(name, "speed_"), value)
	}
	return fmt.Errorf("unknown param: %s", name)
}

// WrapAngle maps a to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
