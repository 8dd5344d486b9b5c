// Package dynamo provides the simulation primitives that drive a vessel through time.
//
// The package defines the interfaces shared by every stage of a run:
//
//   - [State]: flat state vector
//   - [System]: dX/dt = f(X, u, t)
//   - [Integrator]: numerical stepper
//   - [Controller]: pilot producing a control vector each step
//   - [Simulator]: the external driver that advances a system with an integrator
//
// # Example
//
//	vessel := physics.NewVessel(physics.DefaultHull(), boat.New())
//	sim := dynamo.New(vessel, integrators.NewRK4(), control.NewManual(0.6, 0, false))
//	result, _ := sim.Run(ctx, vessel.InitialState(0, 0, 0, 0, 0), cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Sweeps build one simulator per
// goroutine with [ParallelFor].
package dynamo
