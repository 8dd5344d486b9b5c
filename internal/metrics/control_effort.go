package metrics

import (
	"math"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// ControlEffort is the time average of the summed absolute pilot inputs.
// Each sample is held until the next one, so uneven steps are weighted by
// their length.
type ControlEffort struct {
	name     string
	integral float64
	lastT    float64
	lastSum  float64
	first    float64
	samples  int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	sum := 0.0
	for _, val := range u {
		sum += math.Abs(val)
	}
	if c.samples == 0 {
		c.first = t
	} else {
		c.integral += c.lastSum * (t - c.lastT)
	}
	c.lastT = t
	c.lastSum = sum
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	switch c.samples {
	case 0:
		return 0
	case 1:
		return c.lastSum
	}
	span := c.lastT - c.first
	if span <= 0 {
		return c.lastSum
	}
	return c.integral / span
}

func (c *ControlEffort) Reset() {
	c.integral = 0
	c.lastT = 0
	c.lastSum = 0
	c.first = 0
	c.samples = 0
}
