package plant

import (
	"testing"

	"go.viam.com/test"
)

func TestMotorCoefficients(t *testing.T) {
	m, err := NewMotor(10, 0.08, 0.02)
	test.That(t, err, test.ShouldBeNil)

	cv, cw := m.Coefficients()
	test.That(t, cv, test.ShouldAlmostEqual, 2.0, 1e-12)
	test.That(t, cw, test.ShouldAlmostEqual, 0.8, 1e-12)
}

func TestMotorStep(t *testing.T) {
	m, err := NewMotor(10, 0.08, 0.02)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, m.Next(1), test.ShouldAlmostEqual, 2.0, 1e-12)
	test.That(t, m.Next(1), test.ShouldAlmostEqual, 3.6, 1e-12)
	test.That(t, m.Output(), test.ShouldAlmostEqual, 3.6, 1e-12)

	m.Reset()
	test.That(t, m.Output(), test.ShouldEqual, 0.0)
}

func TestMotorSteadyState(t *testing.T) {
	m, err := NewMotor(DefaultDCGain, DefaultTimeConstant, 0.02)
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 1000; i++ {
		m.Next(12)
	}
	test.That(t, m.Output(), test.ShouldAlmostEqual, 12*DefaultDCGain, 1e-6)
}

func TestMotorValidation(t *testing.T) {
	_, err := NewMotor(1, 0.1, 0)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewMotor(1, -1, 0.02)
	test.That(t, err, test.ShouldNotBeNil)
}
