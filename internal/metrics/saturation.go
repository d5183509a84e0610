package metrics

import "github.com/san-kum/fixpid/internal/sim"

// Saturation is the fraction of samples whose output sat on a bound. A high
// value means the integrator is winding up.
type Saturation struct {
	min, max  float64
	saturated int
	samples   int
}

func NewSaturation(min, max float64) *Saturation {
	return &Saturation{min: min, max: max}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(x sim.Sample) {
	s.samples++
	if x.Output <= s.min || x.Output >= s.max {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// Failures counts controller steps that returned an error.
type Failures struct {
	n int
}

func NewFailures() *Failures { return &Failures{} }

func (f *Failures) Name() string { return "failures" }

func (f *Failures) Observe(s sim.Sample) {
	if s.Failed {
		f.n++
	}
}

func (f *Failures) Value() float64 { return float64(f.n) }
func (f *Failures) Reset()         { f.n = 0 }

// Defaults returns the metrics recorded for every run.
func Defaults(sampleTime, outputMin, outputMax float64) []sim.Metric {
	return []sim.Metric{
		NewIAE(sampleTime),
		NewISE(sampleTime),
		NewControlEffort(),
		NewSaturation(outputMin, outputMax),
		NewFailures(),
	}
}
