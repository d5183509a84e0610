package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/edaniels/golog"
)

type Simulator struct {
	loop      *Loop
	metrics   []Metric
	observers []Observer
	logger    golog.Logger
}

// New wraps loop for a batch run. A nil logger falls back to the global one.
func New(loop *Loop, logger golog.Logger) *Simulator {
	if logger == nil {
		logger = golog.Global()
	}
	return &Simulator{
		loop:      loop,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Loop() *Loop { return s.loop }

// Run ticks the loop for cfg.Duration of simulated time. The loop keeps its
// state afterwards; a second Run continues where the first stopped.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/s.loop.SampleTime() + 0.5)
	result := &Result{
		Samples: make([]Sample, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sample, err := s.loop.Tick()
		if err != nil {
			result.Failures++
			var se *StepError
			if errors.As(err, &se) {
				s.logger.Warnw("controller step failed", "step", se.Step, "time", se.Time, "error", se.Wrapped)
			}
			if cfg.StopOnError {
				return result, err
			}
		}

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}

		result.Samples = append(result.Samples, sample)
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debugw("run complete", "steps", result.StepsTaken, "failures", result.Failures)
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Duration < s.loop.SampleTime() {
		return fmt.Errorf("%w: duration %f is shorter than one sample period", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}
