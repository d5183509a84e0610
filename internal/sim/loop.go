package sim

import (
	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/drive"
)

// LoopConfig lists the parts of a closed loop. Sensor and Mapper are
// optional.
type LoopConfig struct {
	Controller Controller
	Channels   *control.Channels
	Plant      Plant
	Sensor     Sensor
	Mapper     drive.Mapper
	Setpoint   Profile
	SampleTime float64
}

// Loop plays the part of the periodic trigger: each Tick samples the
// producers, steps the controller once and hands its output to the plant.
type Loop struct {
	cfg LoopConfig
	k   int
}

func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Controller == nil || cfg.Channels == nil || cfg.Plant == nil {
		return nil, ErrMissingPart
	}
	if cfg.SampleTime <= 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.Setpoint == nil {
		cfg.Setpoint = Constant{}
	}
	return &Loop{cfg: cfg}, nil
}

func (l *Loop) SampleTime() float64 { return l.cfg.SampleTime }

func (l *Loop) Channels() *control.Channels { return l.cfg.Channels }

// Mapper is the duty-cycle mapper, or nil when the loop has none.
func (l *Loop) Mapper() drive.Mapper { return l.cfg.Mapper }

// Ticks is the number of periods run so far.
func (l *Loop) Ticks() int { return l.k }

// Tick runs one sample period. The plant sees the output published by the
// previous period. If the controller fails the output channel keeps its
// previous value and the error is returned as a *StepError alongside the
// sample.
func (l *Loop) Tick() (Sample, error) {
	io := l.cfg.Channels
	t := float64(l.k) * l.cfg.SampleTime

	sp := l.cfg.Setpoint.At(t)
	io.Setpoint.Store(sp)

	y := l.cfg.Plant.Next(io.Output.Load())
	if l.cfg.Sensor != nil {
		y = l.cfg.Sensor.Measure(y)
	}
	io.Feedback.Store(y)

	s := Sample{Step: l.k, Time: t, Setpoint: sp, Feedback: y}

	_, err := l.cfg.Controller.Step()
	if err != nil {
		s.Failed = true
		err = &StepError{Step: l.k, Time: t, Wrapped: err}
	}

	s.Output = io.Output.Load()
	if l.cfg.Mapper != nil {
		s.Duty = l.cfg.Mapper.Duty(s.Output)
	}
	l.k++
	return s, err
}
