package control

import (
	"fmt"
	"math"
)

// PID is a scalar Proportional-Integral-Derivative loop with output limits
// and conditional integration against windup.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	// Min and Max bound the output; equal values disable the limit.
	Min, Max float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Min:    -1,
		Max:    1,
		first:  true,
	}
}

// Update returns the output for a measurement taken at time t.
func (p *PID) Update(measured, t float64) float64 {
	return p.UpdateError(p.Target-measured, t)
}

// UpdateError is Update for callers that compute their own error, e.g. a
// wrapped angle difference.
func (p *PID) UpdateError(err, t float64) float64 {
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.limit(p.Kp * err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.limit(p.Kp*err + p.Ki*p.integral)
	}

	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t

	candidate := p.integral + err*dt
	u := p.Kp*err + p.Ki*candidate + p.Kd*derivative
	limited := p.limit(u)
	// only integrate while unsaturated, or when integrating pulls back out
	if limited == u || math.Signbit(err) != math.Signbit(u) {
		p.integral = candidate
	}
	return limited
}

func (p *PID) limit(u float64) float64 {
	if p.Min == p.Max {
		return u
	}
	return math.Max(p.Min, math.Min(p.Max, u))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":     p.Kp,
		"ki":     p.Ki,
		"kd":     p.Kd,
		"target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
