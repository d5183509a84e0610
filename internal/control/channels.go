package control

import (
	"math"
	"sync/atomic"
)

// Signal is a single sample shared between goroutines. Loads and stores are
// whole-word; readers may observe a slightly stale value but never a torn one.
type Signal struct {
	bits atomic.Uint64
}

func (s *Signal) Load() float64 {
	return math.Float64frombits(s.bits.Load())
}

func (s *Signal) Store(v float64) {
	s.bits.Store(math.Float64bits(v))
}

// Channels carries the samples exchanged with a controller. Producers write
// Setpoint and Feedback; the controller writes Output.
type Channels struct {
	Setpoint Signal
	Feedback Signal
	Output   Signal
}

func NewChannels() *Channels {
	return &Channels{}
}
