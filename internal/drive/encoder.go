package drive

import (
	"fmt"
	"math"
)

// Direction of rotation as reported by a quadrature decoder.
type Direction int

const (
	Anticlockwise Direction = -1
	NoRotation    Direction = 0
	Clockwise     Direction = 1
)

// DefaultEdgesPerPulse is the number of counted edges per encoder pulse
// during velocity capture.
const DefaultEdgesPerPulse = 2

// Encoder converts edge counts captured over one sample period into speed.
type Encoder struct {
	PulsesPerRev  int
	EdgesPerPulse int
	SampleFreq    float64
}

func NewEncoder(pulsesPerRev int, sampleFreq float64) (*Encoder, error) {
	if pulsesPerRev <= 0 {
		return nil, fmt.Errorf("drive: pulses per revolution must be positive, got %d", pulsesPerRev)
	}
	if sampleFreq <= 0 {
		return nil, fmt.Errorf("drive: sample frequency must be positive, got %g", sampleFreq)
	}
	return &Encoder{PulsesPerRev: pulsesPerRev, EdgesPerPulse: DefaultEdgesPerPulse, SampleFreq: sampleFreq}, nil
}

func (e *Encoder) edgesPerRev() float64 {
	return float64(e.PulsesPerRev * e.EdgesPerPulse)
}

// Velocity returns the signed speed in rpm for edges counted in one period.
func (e *Encoder) Velocity(edges uint32, dir Direction) float64 {
	speed := float64(edges*60) * e.SampleFreq / e.edgesPerRev()
	if speed < 1e-6 {
		return 0
	}
	return speed * float64(dir)
}

// Capture returns the edge count and direction a decoder would latch for a
// shaft turning at rpm for one period. Partial edges are dropped.
func (e *Encoder) Capture(rpm float64) (uint32, Direction) {
	edges := math.Floor(math.Abs(rpm) * e.edgesPerRev() / (60 * e.SampleFreq))
	if edges == 0 {
		return 0, NoRotation
	}
	if rpm < 0 {
		return uint32(edges), Anticlockwise
	}
	return uint32(edges), Clockwise
}

// Measure is Capture followed by Velocity: the speed as the controller sees
// it after quantisation.
func (e *Encoder) Measure(rpm float64) float64 {
	return e.Velocity(e.Capture(rpm))
}

// Resolution is the smallest non-zero measurable speed in rpm.
func (e *Encoder) Resolution() float64 {
	return 60 * e.SampleFreq / e.edgesPerRev()
}
