package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/dynamo"
)

// Hull reads SI quantities out of a vessel state vector.
type Hull interface {
	Position(x dynamo.State) mgl64.Vec3
	Speed(x dynamo.State) float64
	Depth(x dynamo.State) float64
	YawRate(x dynamo.State) float64
	Upright(x dynamo.State) float64
	KineticEnergy(x dynamo.State) float64
}

// Standard returns the metrics every run reports.
func Standard(h Hull) []dynamo.Metric {
	return []dynamo.Metric{
		NewMaxSpeed(h),
		NewMeanSpeed(h),
		NewDistance(h),
		NewMeanDepth(h),
		NewControlEffort(),
		NewStability(h, DefaultMaxYawRate),
		NewKineticEnergy(h),
	}
}
