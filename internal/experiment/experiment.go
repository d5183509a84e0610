package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/edaniels/golog"

	"github.com/san-kum/fixpid/internal/config"
	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/drive"
	"github.com/san-kum/fixpid/internal/plant"
	"github.com/san-kum/fixpid/internal/sim"
)

var ErrNotSetup = errors.New("experiment: not set up")

// Experiment turns a run file into a wired closed loop.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    golog.Logger
	control   *control.Config
	setpoint  *sim.Adjustable
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry, logger golog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Setup validates the run file and builds the controller, motor, sensor,
// actuator mapping and metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	ccfg, err := control.NewConfig(e.cfg.ControlGains())
	if err != nil {
		return err
	}
	ts := ccfg.SampleTime()

	io := control.NewChannels()
	ctrl, err := e.registry.GetController(e.cfg.Arithmetic, ccfg, e.cfg.QPoint, io)
	if err != nil {
		return fmt.Errorf("experiment: controller: %w", err)
	}

	motor, err := plant.NewMotor(e.cfg.Plant.DCGain, e.cfg.Plant.TimeConstant, ts)
	if err != nil {
		return fmt.Errorf("experiment: plant: %w", err)
	}

	var sensor sim.Sensor
	if ppr := e.cfg.Encoder.PulsesPerRev; ppr > 0 {
		enc, err := drive.NewEncoder(ppr, e.cfg.Gains.SampleFreq)
		if err != nil {
			return fmt.Errorf("experiment: encoder: %w", err)
		}
		sensor = enc
	}

	mapper, err := e.registry.GetActuator(e.cfg.Actuator, ccfg.OutputMax())
	if err != nil {
		return fmt.Errorf("experiment: actuator: %w", err)
	}

	profile, err := e.registry.GetProfile(e.cfg.Setpoint)
	if err != nil {
		return fmt.Errorf("experiment: setpoint: %w", err)
	}
	e.setpoint = &sim.Adjustable{Base: profile}

	loop, err := sim.NewLoop(sim.LoopConfig{
		Controller: ctrl,
		Channels:   io,
		Plant:      motor,
		Sensor:     sensor,
		Mapper:     mapper,
		Setpoint:   e.setpoint,
		SampleTime: ts,
	})
	if err != nil {
		return err
	}

	e.control = ccfg
	e.simulator = sim.New(loop, e.logger)
	for _, m := range e.registry.DefaultMetrics(ccfg) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	return e.simulator.Run(ctx, sim.Config{Duration: e.cfg.Duration})
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// Setpoint is the adjustable profile driving the loop, for live offsets.
func (e *Experiment) Setpoint() *sim.Adjustable { return e.setpoint }

func (e *Experiment) Control() *control.Config { return e.control }

func (e *Experiment) Config() *config.Config { return e.cfg }
