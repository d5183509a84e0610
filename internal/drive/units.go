package drive

import "math"

// RPMToRadPerSec converts a shaft speed from rpm to rad/s.
func RPMToRadPerSec(rpm float64) float64 { return rpm * math.Pi / 30 }
