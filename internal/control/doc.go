// Package control implements a discrete PID controller with setpoint
// weighting, a first-order filtered derivative and output saturation.
//
// Gains are turned into runtime coefficients once, by [Derive], and bound into
// an immutable [Config]. A [PID] couples a Config with its private [State] and
// the [Channels] shared with the producers of setpoint and feedback samples
// and the consumer of the output:
//
//	cfg, err := control.NewConfig(control.Gains{
//	    Kp: 0.0165, Ki: 1.6452, B: 1, C: 1, N: 100,
//	    SampleFreq: 50, OutputMin: -12, OutputMax: 12,
//	})
//	io := control.NewChannels()
//	pid, err := control.New(cfg, io)
//
//	// once per sample period
//	io.Feedback.Store(measured)
//	out, err := pid.Step()
//
// [FixedPID] evaluates the same algorithm in the fixed-point arithmetic of
// package fixed and reports overflow instead of publishing an output.
//
// # Integrator windup
//
// The integrator is not limited to the output range. While the output is
// saturated the integrator keeps accumulating, which produces overshoot
// once the error changes sign.
//
// # Concurrency
//
// Step must not be called concurrently for the same controller. Channels may
// be written by other goroutines at any time; each sample is read once per
// step.
package control
