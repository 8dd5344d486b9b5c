// Package vehicle exposes a boat through the generic car-style control
// record used by external drivers: throttle, brake, steering and handbrake in,
// a coarse speed and gear report out.
package vehicle

import (
	"sync"
	"time"

	"github.com/san-kum/boatsim/internal/units"
)

// Controls is a generic vehicle control record. Gear fields are accepted and
// echoed back but a boat has no gearbox.
type Controls struct {
	Throttle      float64 `json:"throttle"`
	Steering      float64 `json:"steering"`
	Brake         float64 `json:"brake"`
	Handbrake     bool    `json:"handbrake"`
	IsManualGear  bool    `json:"is_manual_gear"`
	ManualGear    int     `json:"manual_gear"`
	GearImmediate bool    `json:"gear_immediate"`
}

// EffectiveThrottle is throttle minus brake.
func (c Controls) EffectiveThrottle() float64 {
	return c.Throttle - c.Brake
}

// RCData is raw remote-control input. Boats carry none, so it is always zero.
type RCData struct {
	Timestamp     uint64  `json:"timestamp"`
	Pitch         float64 `json:"pitch"`
	Roll          float64 `json:"roll"`
	Throttle      float64 `json:"throttle"`
	Yaw           float64 `json:"yaw"`
	Switches      uint    `json:"switches"`
	VendorID      string  `json:"vendor_id"`
	IsInitialized bool    `json:"is_initialized"`
	IsValid       bool    `json:"is_valid"`
}

// State is the coarse report returned to the driver.
type State struct {
	Speed     float64 `json:"speed"` // m/s along the bow
	Gear      int     `json:"gear"`  // +1 ahead, -1 astern
	Handbrake bool    `json:"handbrake"`
	Timestamp uint64  `json:"timestamp"` // ns
	RCData    RCData  `json:"rc_data"`
}

// Pilot is the part of the boat model the adapter drives.
type Pilot interface {
	SetThrottle(v float64)
	SetSteering(v float64)
	SetHandbrake(b bool)
	ForwardSpeed() float64
}

// Controller is the capability an external driver needs.
type Controller interface {
	SetControls(c Controls)
	Controls() Controls
	State() State
}

// Adapter forwards Controls onto a Pilot. It is safe for concurrent use; the
// pilot itself is only touched under the adapter's lock.
type Adapter struct {
	mu       sync.Mutex
	pilot    Pilot
	scale    units.Scale
	now      func() time.Time
	controls Controls
}

type Option func(*Adapter)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithSpeedUnit sets the length unit the pilot reports speed in. The default
// is meters.
func WithSpeedUnit(s units.Scale) Option {
	return func(a *Adapter) { a.scale = s }
}

// NewAdapter binds p, which may be nil; without a pilot controls are still
// stored and the reported speed is zero.
func NewAdapter(p Pilot, opts ...Option) *Adapter {
	a := &Adapter{pilot: p, scale: units.Meters, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Controller = (*Adapter)(nil)

func (a *Adapter) SetControls(c Controls) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.controls = c
	if a.pilot == nil {
		return
	}
	a.pilot.SetThrottle(c.EffectiveThrottle())
	a.pilot.SetSteering(c.Steering)
	a.pilot.SetHandbrake(c.Handbrake)
}

func (a *Adapter) Controls() Controls {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controls
}

func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := State{
		Gear:      1,
		Handbrake: a.controls.Handbrake,
		Timestamp: uint64(a.now().UnixNano()),
	}
	if a.controls.EffectiveThrottle() < 0 {
		s.Gear = -1
	}
	if a.pilot != nil {
		s.Speed = a.scale.LengthToSI(a.pilot.ForwardSpeed())
	}
	return s
}

// The methods below exist for drivers written against the full car control
// surface. A boat has nothing behind them.

func (a *Adapter) EnableAPIControl(bool)     {}
func (a *Adapter) IsAPIControlEnabled() bool { return true }
func (a *Adapter) Reset()                    {}
func (a *Adapter) SetRCData(RCData)          {}
