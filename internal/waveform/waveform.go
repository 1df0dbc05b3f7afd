// Package waveform reduces decoded audio to a short list of normalized bar
// heights for the sound picker.
package waveform

import "math"

// DefaultBars is the bar count the sound picker renders.
const DefaultBars = 25

// Compute buckets interleaved samples into bars of mean absolute amplitude,
// normalized so the loudest bar is 1.0 and rounded to two decimals. Channels
// are not separated. Input too short to fill every bar yields all zeros.
func Compute(samples []int, bars int) []float64 {
	if bars <= 0 {
		bars = DefaultBars
	}
	out := make([]float64, bars)
	total := len(samples)
	chunk := total / bars
	if chunk == 0 {
		return out
	}

	peak := 0.0
	for i := 0; i < bars; i++ {
		start := i * chunk
		end := start + chunk
		if i == bars-1 {
			end = total
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += math.Abs(float64(s))
		}
		out[i] = sum / float64(end-start)
		peak = math.Max(peak, out[i])
	}
	if peak == 0 {
		return make([]float64, bars)
	}
	for i, v := range out {
		out[i] = math.Round(v/peak*100) / 100
	}
	return out
}
