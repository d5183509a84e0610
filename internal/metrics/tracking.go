package metrics

import (
	"math"

	"github.com/san-kum/fixpid/internal/sim"
)

// IAE integrates the absolute tracking error over time.
type IAE struct {
	dt  float64
	sum float64
}

func NewIAE(sampleTime float64) *IAE {
	return &IAE{dt: sampleTime}
}

func (m *IAE) Name() string         { return "iae" }
func (m *IAE) Observe(s sim.Sample) { m.sum += math.Abs(s.Error()) * m.dt }
func (m *IAE) Value() float64       { return m.sum }
func (m *IAE) Reset()               { m.sum = 0 }

// ISE integrates the squared tracking error over time.
type ISE struct {
	dt  float64
	sum float64
}

func NewISE(sampleTime float64) *ISE {
	return &ISE{dt: sampleTime}
}

func (m *ISE) Name() string { return "ise" }

func (m *ISE) Observe(s sim.Sample) {
	e := s.Error()
	m.sum += e * e * m.dt
}

func (m *ISE) Value() float64 { return m.sum }
func (m *ISE) Reset()         { m.sum = 0 }
