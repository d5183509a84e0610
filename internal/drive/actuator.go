package drive

import "fmt"

// Mapper converts a controller output into a PWM duty cycle in percent.
type Mapper interface {
	Duty(u float64) float64
}

// DutyCycle maps [-Max, Max] linearly onto [-100, 100] percent; the sign
// selects the drive direction.
type DutyCycle struct {
	Max float64
}

func NewDutyCycle(max float64) (*DutyCycle, error) {
	if max <= 0 {
		return nil, fmt.Errorf("drive: output max must be positive, got %g", max)
	}
	return &DutyCycle{Max: max}, nil
}

func (d *DutyCycle) Duty(u float64) float64 {
	return clampPercent(u/d.Max*100, -100, 100)
}

// Servo maps [-Max, Max] onto a hobby-servo pulse of 1.0 to 2.0 ms inside a
// 10 ms period, 15 % duty being neutral.
type Servo struct {
	Max float64
}

const (
	servoNeutral = 15.0
	servoSpan    = 5.0
	// ServoPeriod is the PWM period in seconds the pulse widths assume.
	ServoPeriod = 0.010
)

func NewServo(max float64) (*Servo, error) {
	if max <= 0 {
		return nil, fmt.Errorf("drive: output max must be positive, got %g", max)
	}
	return &Servo{Max: max}, nil
}

func (s *Servo) Duty(u float64) float64 {
	d := u/s.Max*100/20 + servoNeutral
	return clampPercent(d, servoNeutral-servoSpan, servoNeutral+servoSpan)
}

// PulseWidth is the high time in seconds for a duty cycle of the given
// period.
func PulseWidth(duty, period float64) float64 {
	return period * duty / 100
}

func clampPercent(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
