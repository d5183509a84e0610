package sim

import (
	"errors"
	"fmt"
)

// Controller is stepped once per sample period. Both control.PID and
// control.FixedPID satisfy it.
type Controller interface {
	Step() (float64, error)
}

// Plant is the process under control. Next applies one period of input and
// returns the new process output.
type Plant interface {
	Next(u float64) float64
	Output() float64
	Reset()
}

// Sensor turns the true process output into what the controller measures.
type Sensor interface {
	Measure(y float64) float64
}

// Sample is one tick of the loop.
type Sample struct {
	Step     int
	Time     float64
	Setpoint float64
	Feedback float64
	Output   float64
	Duty     float64
	Failed   bool
}

// Error is setpoint minus feedback.
func (s Sample) Error() float64 { return s.Setpoint - s.Feedback }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

type Config struct {
	Duration float64
	// StopOnError ends the run at the first failed controller step instead
	// of holding the previous output.
	StopOnError bool
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Failures   int
}

// Series extracts one field of every sample.
func (r *Result) Series(field func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = field(s)
	}
	return out
}

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrMissingPart   = errors.New("sim: loop is missing a controller, channels or plant")
)

// StepError wraps a controller failure with the tick it happened on.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%.4fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
