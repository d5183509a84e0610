package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/fixpid/internal/sim"
)

var (
	ErrTooShort = errors.New("analysis: not enough samples")
	ErrNoStep   = errors.New("analysis: setpoint equals initial feedback")
)

// StepResponse characterises the feedback after a setpoint change. Times are
// in seconds from the first sample.
type StepResponse struct {
	Initial          float64
	Target           float64
	Peak             float64
	PeakTime         float64
	Overshoot        float64 // percent of the step size
	RiseTime         float64 // 10 % to 90 % of the step
	SettlingTime     float64
	SteadyStateError float64
	Settled          bool
}

// Step analyses samples as the response to a step from the first feedback
// value to the last setpoint. band is the settling tolerance as a fraction
// of the step size, e.g. 0.02.
func Step(samples []sim.Sample, band float64) (StepResponse, error) {
	if len(samples) < 2 {
		return StepResponse{}, ErrTooShort
	}

	y := make([]float64, len(samples))
	for i, s := range samples {
		y[i] = s.Feedback
	}
	y0 := y[0]
	target := samples[len(samples)-1].Setpoint
	size := target - y0
	if size == 0 {
		return StepResponse{}, ErrNoStep
	}

	// Normalise so the step always goes from 0 to 1.
	norm := make([]float64, len(y))
	copy(norm, y)
	floats.AddConst(-y0, norm)
	floats.Scale(1/size, norm)

	r := StepResponse{Initial: y0, Target: target}

	peak := floats.MaxIdx(norm)
	r.Peak = y[peak]
	r.PeakTime = samples[peak].Time
	if norm[peak] > 1 {
		r.Overshoot = (norm[peak] - 1) * 100
	}

	t10, t90 := -1.0, -1.0
	for i, v := range norm {
		if t10 < 0 && v >= 0.1 {
			t10 = samples[i].Time
		}
		if t90 < 0 && v >= 0.9 {
			t90 = samples[i].Time
			break
		}
	}
	if t10 >= 0 && t90 >= 0 {
		r.RiseTime = t90 - t10
	}

	last := -1
	for i, v := range norm {
		if math.Abs(v-1) > band {
			last = i
		}
	}
	switch {
	case last < 0:
		r.Settled = true
	case last < len(samples)-1:
		r.Settled = true
		r.SettlingTime = samples[last+1].Time
	}

	tail := len(samples) / 10
	if tail < 1 {
		tail = 1
	}
	errs := make([]float64, tail)
	for i, s := range samples[len(samples)-tail:] {
		errs[i] = s.Error()
	}
	r.SteadyStateError = stat.Mean(errs, nil)

	return r, nil
}
