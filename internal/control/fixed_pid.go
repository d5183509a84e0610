package control

import (
	"fmt"

	"github.com/san-kum/fixpid/internal/fixed"
)

// Term names reported in TermError.
const (
	TermSetpoint     = "setpoint"
	TermFeedback     = "feedback"
	TermProportional = "proportional"
	TermIntegral     = "integral"
	TermDerivative   = "derivative"
	TermSum          = "sum"
)

// FixedConfig holds a Config's coefficients converted to one fixed-point
// format.
type FixedConfig struct {
	src    *Config
	f      fixed.Format
	kp     fixed.Fixed
	b, c   fixed.Fixed
	ic     fixed.Fixed
	dc1    fixed.Fixed
	dc2    fixed.Fixed
	outMin fixed.Fixed
	outMax fixed.Fixed
}

// NewFixedConfig converts cfg to format f, rounding each coefficient to
// nearest. It fails if any coefficient is out of range.
func NewFixedConfig(cfg *Config, f fixed.Format) (*FixedConfig, error) {
	if cfg == nil {
		return nil, ErrNilController
	}
	g, k := cfg.gains, cfg.coeffs
	fc := &FixedConfig{src: cfg, f: f}

	for _, v := range []struct {
		name string
		x    float64
		dst  *fixed.Fixed
	}{
		{"kp", g.Kp, &fc.kp},
		{"b", g.B, &fc.b},
		{"c", g.C, &fc.c},
		{"int_coeff", k.IntCoeff, &fc.ic},
		{"der_coeff1", k.DerCoeff1, &fc.dc1},
		{"der_coeff2", k.DerCoeff2, &fc.dc2},
		{"output_min", g.OutputMin, &fc.outMin},
		{"output_max", g.OutputMax, &fc.outMax},
	} {
		x, ok := f.FromFloat(v.x)
		if !ok {
			return nil, fmt.Errorf("%w: %s = %g in %v", ErrUnrepresentable, v.name, v.x, f)
		}
		*v.dst = x
	}
	return fc, nil
}

func (c *FixedConfig) Format() fixed.Format { return c.f }
func (c *FixedConfig) Config() *Config      { return c.src }

// FixedState is State in fixed-point form.
type FixedState struct {
	Integrator     fixed.Fixed
	Differentiator fixed.Fixed
	PrevError      fixed.Fixed
}

// Float converts the state to real values.
func (s FixedState) Float(f fixed.Format) State {
	return State{
		Integrator:     f.ToFloat(s.Integrator),
		Differentiator: f.ToFloat(s.Differentiator),
		PrevError:      f.ToFloat(s.PrevError),
	}
}

// StepFixed is Step evaluated in fixed-point arithmetic. If any term
// overflows it returns a *TermError and s unchanged.
func StepFixed(s FixedState, cfg *FixedConfig, setpoint, feedback fixed.Fixed) (fixed.Fixed, FixedState, error) {
	if cfg == nil {
		return 0, s, ErrNilController
	}

	e := fixed.NewExpr(cfg.f)
	p := e.Mul(cfg.kp, e.Sub(e.Mul(cfg.b, setpoint), feedback))
	if err := e.Err(); err != nil {
		return 0, s, &TermError{Term: TermProportional, Err: err}
	}

	e = fixed.NewExpr(cfg.f)
	i := e.Add(e.Mul(cfg.ic, e.Sub(setpoint, feedback)), s.Integrator)
	if err := e.Err(); err != nil {
		return 0, s, &TermError{Term: TermIntegral, Err: err}
	}

	e = fixed.NewExpr(cfg.f)
	swc := e.Sub(e.Mul(cfg.c, setpoint), feedback)
	d := e.Mul(cfg.dc2, e.Add(s.Differentiator, e.Mul(cfg.dc1, e.Sub(swc, s.PrevError))))
	if err := e.Err(); err != nil {
		return 0, s, &TermError{Term: TermDerivative, Err: err}
	}

	e = fixed.NewExpr(cfg.f)
	raw := e.Add(e.Add(p, i), d)
	if err := e.Err(); err != nil {
		return 0, s, &TermError{Term: TermSum, Err: err}
	}

	return fixed.Clamp(raw, cfg.outMin, cfg.outMax),
		FixedState{Integrator: i, Differentiator: d, PrevError: swc}, nil
}

// FixedPID is PID running on fixed-point arithmetic. Samples are converted
// to the configured format as they are read from the channels.
type FixedPID struct {
	cfg   *FixedConfig
	io    *Channels
	state FixedState
}

func NewFixed(cfg *FixedConfig, io *Channels) (*FixedPID, error) {
	if cfg == nil || io == nil {
		return nil, ErrNilController
	}
	return &FixedPID{cfg: cfg, io: io}, nil
}

// Step runs one update. When a sample cannot be converted or the arithmetic
// overflows, it returns the error without touching the state or the output
// channel.
func (p *FixedPID) Step() (float64, error) {
	if p == nil || p.cfg == nil || p.io == nil {
		return 0, ErrNilController
	}
	f := p.cfg.f

	sp, ok := f.FromFloat(p.io.Setpoint.Load())
	if !ok {
		return 0, &TermError{Term: TermSetpoint, Err: ErrUnrepresentable}
	}
	fb, ok := f.FromFloat(p.io.Feedback.Load())
	if !ok {
		return 0, &TermError{Term: TermFeedback, Err: ErrUnrepresentable}
	}

	out, next, err := StepFixed(p.state, p.cfg, sp, fb)
	if err != nil {
		return 0, err
	}
	p.state = next
	u := f.ToFloat(out)
	p.io.Output.Store(u)
	return u, nil
}

func (p *FixedPID) Config() *FixedConfig { return p.cfg }

func (p *FixedPID) State() FixedState { return p.state }
