// Package analysis summarises finished closed-loop runs.
//
//   - [Step]: overshoot, rise time, settling time and steady-state error of a
//     setpoint step
//   - [Spectrum]: power spectrum of a sampled signal, for spotting limit
//     cycles in the output
package analysis
