package vehicle_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestVehicle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vehicle Suite")
}

// fakePilot records the last value of every setter.
type fakePilot struct {
	throttle, steering float64
	handbrake          bool
	speed              float64
	calls              int
}

func (p *fakePilot) SetThrottle(v float64) { p.throttle = v; p.calls++ }
func (p *fakePilot) SetSteering(v float64) { p.steering = v; p.calls++ }
func (p *fakePilot) SetHandbrake(b bool)   { p.handbrake = b; p.calls++ }
func (p *fakePilot) ForwardSpeed() float64 { return p.speed }
