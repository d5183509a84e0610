package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided amplitude spectrum of data sampled at
// sampleFreq, with the mean removed.
func Spectrum(data []float64, sampleFreq float64) (freqs, power []float64) {
	if len(data) < 2 {
		return nil, nil
	}

	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-stat.Mean(data, nil), centered)

	fft := fourier.NewFFT(len(centered))
	coeff := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeff))
	power = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) * sampleFreq
		power[i] = cmplx.Abs(c)
	}
	return freqs, power
}

// DominantFrequency is the frequency with the largest amplitude, excluding
// DC.
func DominantFrequency(data []float64, sampleFreq float64) float64 {
	freqs, power := Spectrum(data, sampleFreq)
	if len(power) < 2 {
		return 0
	}
	return freqs[1+floats.MaxIdx(power[1:])]
}
