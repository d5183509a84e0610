package control

import "fmt"

// Incremental holds the standard-form time constants and the velocity-form
// coefficients of an unfiltered PID, u[k] = u[k-1] + q0 e[k] + q1 e[k-1] + q2 e[k-2].
type Incremental struct {
	Ti, Td     float64
	Q0, Q1, Q2 float64
}

// ToIncremental converts parallel gains at sample time ts. Kp and Ki must be
// non-zero since Ti = Kp/Ki and Td = Kd/Kp.
func ToIncremental(ts, kp, ki, kd float64) (Incremental, error) {
	if ts <= 0 {
		return Incremental{}, fmt.Errorf("%w: sample time must be positive, got %g", ErrInvalidGains, ts)
	}
	if kp == 0 || ki == 0 {
		return Incremental{}, fmt.Errorf("%w: kp and ki must be non-zero", ErrInvalidGains)
	}
	ti := kp / ki
	td := kd / kp
	return Incremental{
		Ti: ti,
		Td: td,
		Q0: kp * (1 + td/ts),
		Q1: -kp * (1 - ts/ti + 2*td/ts),
		Q2: kp * td / ts,
	}, nil
}
