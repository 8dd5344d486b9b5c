// Package boat models the forces a surface vessel's propulsion, rudder, hull and
// buoyancy exert on a rigid body.
//
// The model never owns kinematics. Each tick it reads a [Kinematics] snapshot from
// an injected [Body] and applies four independent contributions back to it:
//
//   - thrust along the forward axis, scaled by throttle
//   - rudder yaw torque, proportional to steering and forward speed
//   - hydrodynamic drag (forward + lateral) and angular damping
//   - buoyancy proportional to submerged depth below a flat water plane
//
// All quantities are SI. Hosts with another linear unit wrap their body in a
// [ScaledBody] so the conversion happens once at the injection point.
//
// # Example
//
//	m := boat.New()
//	m.Bind(body)
//	m.Setup()
//	m.SetThrottle(0.8)
//	m.SetSteering(-0.25)
//	m.Tick(dt) // once per physics step, before the host integrates
//
// # Thread Safety
//
// A Model is not safe for concurrent use. Setters and Tick are expected to run
// sequentially within a frame.
package boat
