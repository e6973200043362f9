// Package signal generates deterministic synthetic series that stand in for
// live audio data when exercising the rendering controller from the demo and
// bench harnesses.
package signal

import "math"

// Waveform returns n samples of a layered sine mix in [-1, 1], advanced by
// phase. The mix keeps a few incommensurate harmonics so decimated output
// still shows structure.
func Waveform(n int, phase float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := phase + float64(i)/float64(n)
		out[i] = 0.55*math.Sin(2*math.Pi*3*t) +
			0.3*math.Sin(2*math.Pi*7.3*t+0.5) +
			0.15*math.Sin(2*math.Pi*19.7*t+1.1)
	}
	return out
}

// Spectrum returns n non-negative bins shaped like a decaying magnitude
// spectrum with a slow-moving resonance peak.
func Spectrum(n int, phase float64) []float64 {
	out := make([]float64, n)
	peak := (math.Sin(phase) + 1) / 2 * float64(n)
	for i := range out {
		f := float64(i)
		base := math.Exp(-f / (float64(n) / 4))
		resonance := 0.8 * math.Exp(-math.Pow(f-peak, 2)/(2*math.Pow(float64(n)/20, 2)))
		out[i] = base + resonance
	}
	return out
}

// Meter returns a single level value in [0, 1] for a VU-meter style display.
func Meter(phase float64) float64 {
	v := 0.6 + 0.3*math.Sin(2.1*phase) + 0.1*math.Sin(13*phase)
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}
