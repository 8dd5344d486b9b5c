// Package physics mounts the boat force model on a rigid hull so it can be
// integrated as a [dynamo.System].
//
// [Vessel] carries a 13-element state: position, orientation quaternion
// (w, x, y, z), linear velocity and world-frame angular velocity, all in the
// hull's length unit. The control vector is [throttle, steering, handbrake].
//
// Vessel also implements [dynamo.Configurable] for runtime parameter
// adjustment, [dynamo.Hamiltonian] for energy tracking and [dynamo.Projector]
// to keep the orientation normalised:
//
//	v := physics.NewVessel(physics.DefaultHull(), boat.New())
//	x := v.InitialState(0, 0, 0, 0)
//	dx := v.Derive(x, dynamo.Control{1, 0, 0}, 0)
package physics
