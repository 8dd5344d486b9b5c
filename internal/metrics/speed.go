package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/dynamo"
)

type MaxSpeed struct {
	hull Hull
	max  float64
}

func NewMaxSpeed(h Hull) *MaxSpeed { return &MaxSpeed{hull: h} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.max = math.Max(m.max, m.hull.Speed(x))
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

type MeanSpeed struct {
	hull    Hull
	sum     float64
	samples int
}

func NewMeanSpeed(h Hull) *MeanSpeed { return &MeanSpeed{hull: h} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.sum += m.hull.Speed(x)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}

// Distance is the horizontal path length over ground, in meters.
type Distance struct {
	hull  Hull
	total float64
	last  mgl64.Vec3
	seen  bool
}

func NewDistance(h Hull) *Distance { return &Distance{hull: h} }

func (d *Distance) Name() string { return "distance" }

func (d *Distance) Observe(x dynamo.State, u dynamo.Control, t float64) {
	p := d.hull.Position(x)
	if d.seen {
		d.total += math.Hypot(p.X()-d.last.X(), p.Y()-d.last.Y())
	}
	d.last = p
	d.seen = true
}

func (d *Distance) Value() float64 { return d.total }

func (d *Distance) Reset() {
	d.total = 0
	d.last = mgl64.Vec3{}
	d.seen = false
}
