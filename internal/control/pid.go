package control

import "math"

// State is the memory a controller carries between sample periods.
type State struct {
	Integrator     float64
	Differentiator float64
	PrevError      float64
}

// Terms breaks one step's output into its parts, before saturation.
type Terms struct {
	P, I, D float64
	Raw     float64
	Output  float64
}

// Saturated reports whether the output was clamped.
func (t Terms) Saturated() bool {
	return t.Raw != t.Output
}

// Step computes one control update. It is a pure function of its arguments:
// the returned State replaces s for the next period. A nil cfg yields a zero
// output and s unchanged, as does a setpoint or feedback that is NaN or
// infinite.
func Step(s State, cfg *Config, setpoint, feedback float64) (float64, State) {
	t, next := StepTerms(s, cfg, setpoint, feedback)
	return t.Output, next
}

// StepTerms is Step with the individual terms exposed.
func StepTerms(s State, cfg *Config, setpoint, feedback float64) (Terms, State) {
	if cfg == nil || !finite(setpoint) || !finite(feedback) {
		return Terms{}, s
	}
	g, k := &cfg.gains, &cfg.coeffs

	p := g.Kp * (g.B*setpoint - feedback)
	i := k.IntCoeff*(setpoint-feedback) + s.Integrator
	e := g.C*setpoint - feedback
	d := k.DerCoeff2 * (s.Differentiator + k.DerCoeff1*(e-s.PrevError))

	raw := p + i + d
	return Terms{P: p, I: i, D: d, Raw: raw, Output: cfg.clamp(raw)},
		State{Integrator: i, Differentiator: d, PrevError: e}
}

// PID is a controller instance. Its state starts at zero and is only reset
// by constructing a new instance.
type PID struct {
	cfg   *Config
	io    *Channels
	state State
	last  Terms
}

// New binds cfg to io. Both are required.
func New(cfg *Config, io *Channels) (*PID, error) {
	if cfg == nil || io == nil {
		return nil, ErrNilController
	}
	return &PID{cfg: cfg, io: io}, nil
}

// Step reads the setpoint and feedback channels once, updates the state and
// publishes the output. On a nil controller it returns zero and
// ErrNilController. A non-finite sample returns zero and ErrInvalidSample;
// the state and the output channel keep their previous values.
func (p *PID) Step() (float64, error) {
	if p == nil || p.cfg == nil || p.io == nil {
		return 0, ErrNilController
	}
	sp := p.io.Setpoint.Load()
	fb := p.io.Feedback.Load()
	if !finite(sp) || !finite(fb) {
		return 0, ErrInvalidSample
	}

	t, next := StepTerms(p.state, p.cfg, sp, fb)
	p.state = next
	p.last = t
	p.io.Output.Store(t.Output)
	return t.Output, nil
}

func (p *PID) Config() *Config { return p.cfg }

func (p *PID) State() State { return p.state }

// Terms returns the breakdown of the most recent step.
func (p *PID) Terms() Terms { return p.last }

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
