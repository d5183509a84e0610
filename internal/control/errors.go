package control

import (
	"errors"
	"fmt"
)

var (
	// ErrNilController is returned by Step on a nil or unbound controller.
	// The output is zero and no state changes.
	ErrNilController = errors.New("control: nil controller")

	// ErrInvalidGains indicates gains that cannot produce coefficients.
	ErrInvalidGains = errors.New("control: invalid gains")

	// ErrInvalidSample indicates a NaN or infinite setpoint or feedback. The
	// step is skipped: output zero, state unchanged.
	ErrInvalidSample = errors.New("control: setpoint or feedback is not finite")

	// ErrUnrepresentable indicates a coefficient or sample outside the range
	// of the fixed-point format.
	ErrUnrepresentable = errors.New("control: value not representable in fixed-point format")
)

// TermError reports the part of the control law that failed.
type TermError struct {
	Term string
	Err  error
}

func (e *TermError) Error() string {
	return fmt.Sprintf("control: %s term: %v", e.Term, e.Err)
}

func (e *TermError) Unwrap() error {
	return e.Err
}
