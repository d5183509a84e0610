// Package plant provides discrete-time process models used to close the loop
// around a controller in simulation.
package plant

import "fmt"

const (
	// DefaultDCGain is the steady-state speed per volt of the lab motor, in
	// rpm/V.
	DefaultDCGain = 23.8095238095
	// DefaultTimeConstant is the lab motor's mechanical time constant in
	// seconds.
	DefaultTimeConstant = 0.2293332714
)

// Motor is a first-order DC motor, tau*dw/dt + w = K*v, discretised with the
// backward Euler rule:
//
//	w[k+1] = coeffV*v + coeffW*w[k]
type Motor struct {
	DCGain       float64
	TimeConstant float64
	SampleTime   float64

	coeffV   float64
	coeffW   float64
	velocity float64
}

func NewMotor(dcGain, timeConstant, sampleTime float64) (*Motor, error) {
	if sampleTime <= 0 {
		return nil, fmt.Errorf("plant: sample time must be positive, got %g", sampleTime)
	}
	if timeConstant < 0 {
		return nil, fmt.Errorf("plant: time constant must not be negative, got %g", timeConstant)
	}
	den := sampleTime + timeConstant
	return &Motor{
		DCGain:       dcGain,
		TimeConstant: timeConstant,
		SampleTime:   sampleTime,
		coeffV:       sampleTime * dcGain / den,
		coeffW:       timeConstant / den,
	}, nil
}

// Next applies voltage for one sample period and returns the new angular
// velocity in rpm.
func (m *Motor) Next(voltage float64) float64 {
	m.velocity = m.coeffV*voltage + m.coeffW*m.velocity
	return m.velocity
}

// Output is the most recent velocity.
func (m *Motor) Output() float64 { return m.velocity }

func (m *Motor) Reset() { m.velocity = 0 }

// Coefficients returns the input and feedback weights of the difference
// equation.
func (m *Motor) Coefficients() (coeffV, coeffW float64) {
	return m.coeffV, m.coeffW
}
