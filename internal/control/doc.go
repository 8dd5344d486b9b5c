// Package control provides the pilots that steer a vessel.
//
// Pilots implement the [dynamo.Controller] interface and return the
// [throttle, steering, handbrake] control vector each step:
//
//   - [None]: idle, all inputs zero
//   - [Manual]: fixed inputs, updated from outside the loop
//   - [Schedule]: timed legs of fixed inputs
//   - [Autopilot]: heading and speed hold built on two [PID] loops
//
// # Usage
//
//	ap := control.NewAutopilot(vessel, math.Pi/2, 6)
//	sim := dynamo.New(vessel, integ, ap)
//
// Pilots implementing [dynamo.Configurable] support live tuning.
package control
