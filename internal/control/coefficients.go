package control

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// Gains are the tuning parameters of the controller as a designer states
// them.
type Gains struct {
	Kp, Ki, Kd float64

	// B and C weight the setpoint in the proportional and derivative error.
	B, C float64

	// N is the derivative filter coefficient.
	N float64

	// SampleFreq is the control rate in Hz.
	SampleFreq float64

	OutputMin, OutputMax float64
}

// Coefficients are derived from Gains and consumed by Step.
type Coefficients struct {
	SampleTime float64
	IntCoeff   float64
	DerCoeff1  float64
	DerCoeff2  float64
}

// Validate reports every problem with g.
func (g Gains) Validate() error {
	var err error
	fields := []struct {
		name string
		v    float64
	}{
		{"kp", g.Kp}, {"ki", g.Ki}, {"kd", g.Kd}, {"b", g.B}, {"c", g.C}, {"n", g.N},
		{"sample_freq", g.SampleFreq}, {"output_min", g.OutputMin}, {"output_max", g.OutputMax},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			err = multierr.Append(err, fmt.Errorf("%w: %s is not finite", ErrInvalidGains, f.name))
		}
	}
	if g.SampleFreq <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: sample frequency must be positive, got %g", ErrInvalidGains, g.SampleFreq))
	}
	if g.N < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: filter coefficient must not be negative, got %g", ErrInvalidGains, g.N))
	}
	if !(g.OutputMin < g.OutputMax) {
		err = multierr.Append(err, fmt.Errorf("%w: output_min %g must be below output_max %g", ErrInvalidGains, g.OutputMin, g.OutputMax))
	}
	return err
}

// Derive computes the runtime coefficients. It must be rerun whenever Ki, Kd,
// N or the sample frequency change.
func Derive(g Gains) (Coefficients, error) {
	if err := g.Validate(); err != nil {
		return Coefficients{}, err
	}
	ts := 1 / g.SampleFreq
	return Coefficients{
		SampleTime: ts,
		IntCoeff:   g.Ki * ts,
		DerCoeff1:  g.Kd * g.N,
		DerCoeff2:  1 / (1 + g.N*ts),
	}, nil
}
