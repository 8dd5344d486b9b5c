// Package analysis characterises recorded vessel runs.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation content of a signal
//     such as heave or yaw rate
//   - [TurningDiameter]: steady turning circle from a full-rudder run
//   - [StoppingDistance]: path length until the hull slows below a speed
//   - [SteadyStateSweep]: settled response as one parameter is varied
//   - [TrackToASCII]: top-down plot of the path over ground
//
// # Example
//
//	track := analysis.NewTrack(vessel, result)
//	d, err := analysis.TurningDiameter(track)
package analysis
