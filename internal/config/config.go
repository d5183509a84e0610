package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/plant"
)

const (
	DefaultDuration   = 5.0
	DefaultSampleFreq = 50.0
	DefaultOutputMax  = 12.0
	DefaultSetpoint   = 100.0
	DefaultQ          = 14
)

const (
	ArithmeticFloat = "float"
	ArithmeticFixed = "fixed"

	ActuatorDuty  = "duty"
	ActuatorServo = "servo"

	ProfileConstant = "constant"
	ProfileStep     = "step"
	ProfileSquare   = "square"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name       string         `yaml:"name"`
	Arithmetic string         `yaml:"arithmetic"`
	QPoint     uint           `yaml:"q_point"`
	Duration   float64        `yaml:"duration"`
	Gains      GainsConfig    `yaml:"gains"`
	Plant      PlantConfig    `yaml:"plant"`
	Encoder    EncoderConfig  `yaml:"encoder"`
	Actuator   string         `yaml:"actuator"`
	Setpoint   SetpointConfig `yaml:"setpoint"`
}

type GainsConfig struct {
	Kp         float64 `yaml:"kp"`
	Ki         float64 `yaml:"ki"`
	Kd         float64 `yaml:"kd"`
	B          float64 `yaml:"b"`
	C          float64 `yaml:"c"`
	N          float64 `yaml:"n"`
	SampleFreq float64 `yaml:"sample_freq"`
	OutputMin  float64 `yaml:"output_min"`
	OutputMax  float64 `yaml:"output_max"`
}

type PlantConfig struct {
	DCGain       float64 `yaml:"dc_gain"`
	TimeConstant float64 `yaml:"time_constant"`
}

// EncoderConfig enables velocity quantisation when PulsesPerRev > 0.
type EncoderConfig struct {
	PulsesPerRev int `yaml:"pulses_per_rev"`
}

// SetpointConfig selects a profile. A constant uses Value. A step goes from
// Value to High at time At. A square wave alternates Low and High every half
// Period, starting Low.
type SetpointConfig struct {
	Kind   string  `yaml:"kind"`
	Value  float64 `yaml:"value"`
	Low    float64 `yaml:"low"`
	High   float64 `yaml:"high"`
	At     float64 `yaml:"at"`
	Period float64 `yaml:"period"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "motor",
		Arithmetic: ArithmeticFloat,
		QPoint:     DefaultQ,
		Duration:   DefaultDuration,
		Gains: GainsConfig{
			Kp:         0.0165,
			Ki:         1.6452,
			B:          1,
			C:          1,
			N:          100,
			SampleFreq: DefaultSampleFreq,
			OutputMin:  -DefaultOutputMax,
			OutputMax:  DefaultOutputMax,
		},
		Plant: PlantConfig{
			DCGain:       plant.DefaultDCGain,
			TimeConstant: plant.DefaultTimeConstant,
		},
		Actuator: ActuatorDuty,
		Setpoint: SetpointConfig{Kind: ProfileConstant, Value: DefaultSetpoint},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ControlGains converts the gains section for control.NewConfig.
func (c *Config) ControlGains() control.Gains {
	g := c.Gains
	return control.Gains{
		Kp: g.Kp, Ki: g.Ki, Kd: g.Kd,
		B: g.B, C: g.C, N: g.N,
		SampleFreq: g.SampleFreq,
		OutputMin:  g.OutputMin,
		OutputMax:  g.OutputMax,
	}
}

func (c *Config) SampleTime() float64 {
	if c.Gains.SampleFreq <= 0 {
		return 0
	}
	return 1 / c.Gains.SampleFreq
}

// Validate reports every invalid field at once. Gain checks are delegated to
// control.Gains so both layers agree.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Name == "" || c.Name == "." || c.Name == ".." || strings.ContainsAny(c.Name, `/\`) {
		invalid("name %q must be a plain file name", c.Name)
	}

	switch c.Arithmetic {
	case ArithmeticFloat:
	case ArithmeticFixed:
		if c.QPoint > 31 {
			invalid("q_point %d out of range 0..31", c.QPoint)
		}
	default:
		invalid("unknown arithmetic %q", c.Arithmetic)
	}

	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		invalid("duration must be positive, got %g", c.Duration)
	}

	err = multierr.Append(err, c.ControlGains().Validate())

	if !(c.Plant.TimeConstant > 0) || math.IsInf(c.Plant.TimeConstant, 0) {
		invalid("plant time_constant must be positive, got %g", c.Plant.TimeConstant)
	}
	if math.IsNaN(c.Plant.DCGain) || math.IsInf(c.Plant.DCGain, 0) {
		invalid("plant dc_gain must be finite")
	}
	if c.Encoder.PulsesPerRev < 0 {
		invalid("encoder pulses_per_rev must not be negative, got %d", c.Encoder.PulsesPerRev)
	}

	switch c.Actuator {
	case ActuatorDuty, ActuatorServo:
	default:
		invalid("unknown actuator %q", c.Actuator)
	}

	sp := c.Setpoint
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"value", sp.Value}, {"low", sp.Low}, {"high", sp.High}, {"at", sp.At}, {"period", sp.Period},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			invalid("setpoint %s must be finite", f.name)
		}
	}

	switch c.Setpoint.Kind {
	case ProfileConstant, ProfileStep:
	case ProfileSquare:
		if !(c.Setpoint.Period > 0) {
			invalid("square setpoint needs a positive period, got %g", c.Setpoint.Period)
		}
	default:
		invalid("unknown setpoint kind %q", c.Setpoint.Kind)
	}

	return err
}
