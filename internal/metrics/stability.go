package metrics

import (
	"math"

	"github.com/san-kum/boatsim/internal/dynamo"
)

// DefaultMaxYawRate is the yaw rate, rad/s, above which a hull counts as spinning out.
const DefaultMaxYawRate = 1.5

// Stability is the fraction of samples where the hull is upright and yawing
// slower than the threshold. 1 means the run never spun out or capsized.
type Stability struct {
	name       string
	hull       Hull
	threshold  float64
	violations int
	samples    int
}

func NewStability(h Hull, maxYawRate float64) *Stability {
	return &Stability{
		name:      "stability",
		hull:      h,
		threshold: maxYawRate,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if !x.IsValid() || math.Abs(s.hull.YawRate(x)) > s.threshold || s.hull.Upright(x) <= 0 {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
