package control

import (
	"fmt"

	"github.com/san-kum/fixpid/internal/fixed"
)

// HardwareConstant is one precomputed value for a fixed-point datapath.
type HardwareConstant struct {
	Name   string
	Value  float64
	Format fixed.Format
	Word   fixed.Fixed
}

// Line renders the constant as a Verilog wire declaration.
func (h HardwareConstant) Line() string {
	return h.Format.Verilog(h.Name, h.Word)
}

// Datapath describes the surroundings of a hardware controller: the system
// clock, the encoder resolution and the actuator saturation voltage.
type Datapath struct {
	ClockFreq   float64
	TicksPerRev float64
	SatVoltage  float64
}

// HardwareConstants folds gains into the products a pipelined datapath needs
// so that no multiplication by b, c or N happens at run time. The voltage
// coefficient is Q8, everything else Q16.
func HardwareConstants(g Gains, dp Datapath) ([]HardwareConstant, error) {
	k, err := Derive(g)
	if err != nil {
		return nil, err
	}
	if dp.TicksPerRev <= 0 || dp.SatVoltage <= 0 {
		return nil, fmt.Errorf("%w: ticks per revolution and saturation voltage must be positive", ErrInvalidGains)
	}

	ts := k.SampleTime
	den := 1 + g.N*ts
	values := []struct {
		name string
		v    float64
		f    fixed.Format
	}{
		{"K_p1", g.Kp * g.B, fixed.Q16},
		{"K_p2", g.Kp, fixed.Q16},
		{"K_i1", g.Ki * ts, fixed.Q16},
		{"K_d1", g.Kd * g.N * g.C / den, fixed.Q16},
		{"K_d2", g.Kd * g.N / den, fixed.Q16},
		{"K_d3", 1 / den, fixed.Q16},
		{"tickCoeff", 60 * g.SampleFreq / dp.TicksPerRev, fixed.Q16},
		{"voltageOffset", 3 * dp.SatVoltage, fixed.Q16},
		{"voltageCoeff", 0.0005 * dp.ClockFreq / dp.SatVoltage, fixed.Q8},
	}

	out := make([]HardwareConstant, 0, len(values))
	for _, v := range values {
		w, ok := v.f.FromFloat(v.v)
		if !ok {
			return nil, fmt.Errorf("%w: %s = %g in %v", ErrUnrepresentable, v.name, v.v, v.f)
		}
		out = append(out, HardwareConstant{Name: v.name, Value: v.v, Format: v.f, Word: w})
	}
	return out, nil
}
