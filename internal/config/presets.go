package config

import (
	"sort"

	"github.com/san-kum/fixpid/internal/plant"
)

var motorPlant = PlantConfig{DCGain: plant.DefaultDCGain, TimeConstant: plant.DefaultTimeConstant}

// Presets reproduce the controller and plant constants of the motor rig.
var Presets = map[string]*Config{
	"motor": {
		Name: "motor", Arithmetic: ArithmeticFloat, QPoint: DefaultQ, Duration: 5,
		Gains: GainsConfig{
			Kp: 0.0165, Ki: 1.6452, B: 1, C: 1, N: 100,
			SampleFreq: 50, OutputMin: -12, OutputMax: 12,
		},
		Plant: motorPlant, Actuator: ActuatorDuty,
		Setpoint: SetpointConfig{Kind: ProfileConstant, Value: 100},
	},
	"motor-slow": {
		Name: "motor-slow", Arithmetic: ArithmeticFloat, QPoint: DefaultQ, Duration: 5,
		Gains: GainsConfig{
			Kp: 0.0268, Ki: 1.1415, B: 1, C: 1, N: 100,
			SampleFreq: 50, OutputMin: -12, OutputMax: 12,
		},
		Plant: motorPlant, Actuator: ActuatorDuty,
		Setpoint: SetpointConfig{Kind: ProfileConstant, Value: 100},
	},
	"motor-pid": {
		Name: "motor-pid", Arithmetic: ArithmeticFloat, QPoint: DefaultQ, Duration: 5,
		Gains: GainsConfig{
			Kp: 0.324, Ki: 11.6096, Kd: -0.0022, B: 1, C: 1, N: 30.2022,
			SampleFreq: 50, OutputMin: -12, OutputMax: 12,
		},
		Plant: motorPlant, Actuator: ActuatorDuty,
		Setpoint: SetpointConfig{Kind: ProfileConstant, Value: 100},
	},
	"motor-fixed": {
		Name: "motor-fixed", Arithmetic: ArithmeticFixed, QPoint: 14, Duration: 5,
		Gains: GainsConfig{
			Kp: 0.0165, Ki: 1.6452, B: 1, C: 1, N: 100,
			SampleFreq: 50, OutputMin: -12, OutputMax: 12,
		},
		Plant: motorPlant, Actuator: ActuatorDuty,
		Setpoint: SetpointConfig{Kind: ProfileConstant, Value: 100},
	},
	"qei": {
		Name: "qei", Arithmetic: ArithmeticFloat, QPoint: DefaultQ, Duration: 10,
		Gains: GainsConfig{
			Kp: 0.0165, Ki: 1.6452, B: 1, C: 1, N: 100,
			SampleFreq: 50, OutputMin: -12, OutputMax: 12,
		},
		Plant:    motorPlant,
		Encoder:  EncoderConfig{PulsesPerRev: 1366},
		Actuator: ActuatorServo,
		Setpoint: SetpointConfig{Kind: ProfileSquare, Low: 10, High: 20, Period: 4},
	},
	"servo": {
		Name: "servo", Arithmetic: ArithmeticFloat, QPoint: DefaultQ, Duration: 5,
		Gains: GainsConfig{
			Kp: 0.0165, Ki: 1.6452, B: 1, C: 1, N: 100,
			SampleFreq: 50, OutputMin: -12, OutputMax: 12,
		},
		Plant: motorPlant, Actuator: ActuatorServo,
		Setpoint: SetpointConfig{Kind: ProfileStep, Value: 10, High: 20, At: 1},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
