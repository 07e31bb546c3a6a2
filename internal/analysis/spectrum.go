package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/chime/internal/sim"
)

// Spectrum returns the one-sided magnitude spectrum of a signal sampled
// every dt seconds. The mean is removed and a Hann window applied first.
func Spectrum(signal []float64, dt float64) (freqs, mags []float64) {
	n := len(signal)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range signal {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	spec := fft.FFTReal(x)
	half := n / 2
	freqs = make([]float64, half)
	mags = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		mags[k] = cmplx.Abs(spec[k]) / float64(n)
	}
	return freqs, mags
}

// DominantFrequency is the frequency of the largest non-DC bin, or 0 if the
// signal is too short or flat.
func DominantFrequency(signal []float64, dt float64) float64 {
	freqs, mags := Spectrum(signal, dt)
	best, bestMag := 0, 0.0
	for k := 1; k < len(mags); k++ {
		if mags[k] > bestMag {
			best, bestMag = k, mags[k]
		}
	}
	if best == 0 {
		return 0
	}
	return freqs[best]
}

func Heights(samples []sim.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Ball.Pos.Y
	}
	return out
}

func Speeds(samples []sim.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Ball.Speed()
	}
	return out
}

// SampleInterval estimates the spacing of recorded samples.
func SampleInterval(samples []sim.Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	return (samples[len(samples)-1].Time - samples[0].Time) / float64(len(samples)-1)
}
