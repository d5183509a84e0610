package sim

import "math"

// Profile supplies the setpoint as a function of time.
type Profile interface {
	At(t float64) float64
}

type Constant struct {
	Value float64
}

func (c Constant) At(float64) float64 { return c.Value }

// StepChange holds Before until Time, then After.
type StepChange struct {
	Before float64
	After  float64
	Time   float64
}

func (s StepChange) At(t float64) float64 {
	if t < s.Time {
		return s.Before
	}
	return s.After
}

// Square alternates between Low and High, spending half of Period at each,
// starting Low.
type Square struct {
	Low    float64
	High   float64
	Period float64
}

func (s Square) At(t float64) float64 {
	if s.Period <= 0 {
		return s.Low
	}
	if math.Mod(t, s.Period) < s.Period/2 {
		return s.Low
	}
	return s.High
}

// Adjustable adds an operator offset to a base profile.
type Adjustable struct {
	Base   Profile
	Offset float64
}

func (a *Adjustable) At(t float64) float64 {
	return a.Base.At(t) + a.Offset
}
