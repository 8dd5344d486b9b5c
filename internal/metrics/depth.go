package metrics

import "github.com/san-kum/boatsim/internal/dynamo"

// MeanDepth is the average depth of the hull origin below the water level.
// Negative values mean the hull spent its time airborne.
type MeanDepth struct {
	hull    Hull
	sum     float64
	samples int
}

func NewMeanDepth(h Hull) *MeanDepth { return &MeanDepth{hull: h} }

func (m *MeanDepth) Name() string { return "mean_depth" }

func (m *MeanDepth) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.sum += m.hull.Depth(x)
	m.samples++
}

func (m *MeanDepth) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanDepth) Reset() {
	m.sum = 0
	m.samples = 0
}
