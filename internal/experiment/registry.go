package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/fixpid/internal/config"
	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/drive"
	"github.com/san-kum/fixpid/internal/fixed"
	"github.com/san-kum/fixpid/internal/metrics"
	"github.com/san-kum/fixpid/internal/sim"
)

type (
	controllerFunc func(cfg *control.Config, q uint, io *control.Channels) (sim.Controller, error)
	actuatorFunc   func(outputMax float64) (drive.Mapper, error)
	profileFunc    func(sp config.SetpointConfig) sim.Profile
)

// Registry maps the names used in run files to constructors.
type Registry struct {
	arithmetic map[string]controllerFunc
	actuators  map[string]actuatorFunc
	profiles   map[string]profileFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		arithmetic: make(map[string]controllerFunc),
		actuators:  make(map[string]actuatorFunc),
		profiles:   make(map[string]profileFunc),
	}

	r.arithmetic[config.ArithmeticFloat] = func(cfg *control.Config, _ uint, io *control.Channels) (sim.Controller, error) {
		return control.New(cfg, io)
	}
	r.arithmetic[config.ArithmeticFixed] = func(cfg *control.Config, q uint, io *control.Channels) (sim.Controller, error) {
		f, err := fixed.NewFormat(q)
		if err != nil {
			return nil, err
		}
		fc, err := control.NewFixedConfig(cfg, f)
		if err != nil {
			return nil, err
		}
		return control.NewFixed(fc, io)
	}

	r.actuators[config.ActuatorDuty] = func(max float64) (drive.Mapper, error) { return drive.NewDutyCycle(max) }
	r.actuators[config.ActuatorServo] = func(max float64) (drive.Mapper, error) { return drive.NewServo(max) }

	r.profiles[config.ProfileConstant] = func(sp config.SetpointConfig) sim.Profile {
		return sim.Constant{Value: sp.Value}
	}
	r.profiles[config.ProfileStep] = func(sp config.SetpointConfig) sim.Profile {
		return sim.StepChange{Before: sp.Value, After: sp.High, Time: sp.At}
	}
	r.profiles[config.ProfileSquare] = func(sp config.SetpointConfig) sim.Profile {
		return sim.Square{Low: sp.Low, High: sp.High, Period: sp.Period}
	}

	return r
}

func (r *Registry) GetController(arithmetic string, cfg *control.Config, q uint, io *control.Channels) (sim.Controller, error) {
	fn, ok := r.arithmetic[arithmetic]
	if !ok {
		return nil, fmt.Errorf("unknown arithmetic: %s", arithmetic)
	}
	return fn(cfg, q, io)
}

func (r *Registry) GetActuator(name string, outputMax float64) (drive.Mapper, error) {
	fn, ok := r.actuators[name]
	if !ok {
		return nil, fmt.Errorf("unknown actuator: %s", name)
	}
	return fn(outputMax)
}

func (r *Registry) GetProfile(sp config.SetpointConfig) (sim.Profile, error) {
	fn, ok := r.profiles[sp.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown setpoint kind: %s", sp.Kind)
	}
	return fn(sp), nil
}

func (r *Registry) ListActuators() []string {
	return sortedKeys(r.actuators)
}

func (r *Registry) ListProfiles() []string {
	return sortedKeys(r.profiles)
}

func (r *Registry) DefaultMetrics(cfg *control.Config) []sim.Metric {
	return metrics.Defaults(cfg.SampleTime(), cfg.OutputMin(), cfg.OutputMax())
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
