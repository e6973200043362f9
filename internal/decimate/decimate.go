// Package decimate reduces long numeric series to a bounded number of
// representative samples before they reach a renderer.
package decimate

import "math"

// rmsRatio is the downsampling ratio above which adaptive bucketing switches
// from peak picking to RMS, preserving perceptual energy instead of
// individual transients.
const rmsRatio = 10.0

// Decimate shrinks series to at most maxPoints samples using min/max
// alternating stride bucketing: the series is split into contiguous buckets
// and even output indices take the bucket maximum while odd indices take the
// minimum, preserving the visual envelope of waveform-like data.
//
// The input is never mutated. If the series already fits it is returned
// unchanged. A non-positive maxPoints is a caller bug; the result is nil.
func Decimate(series []float64, maxPoints int) []float64 {
	if maxPoints <= 0 {
		return nil
	}
	if len(series) <= maxPoints {
		return series
	}

	step := int(math.Ceil(float64(len(series)) / float64(maxPoints)))
	out := make([]float64, 0, maxPoints)
	for start := 0; start < len(series); start += step {
		end := start + step
		if end > len(series) {
			end = len(series)
		}
		lo, hi := bucketMinMax(series[start:end])
		if len(out)%2 == 0 {
			out = append(out, hi)
		} else {
			out = append(out, lo)
		}
	}
	return out
}

// AdaptiveDecimate shrinks series to at most targetPoints samples. Each of
// the targetPoints output buckets covers the slice
// [floor(i*ratio), floor((i+1)*ratio)). Under heavy downsampling
// (ratio > 10) a bucket contributes its RMS; otherwise it contributes the
// sample with the largest magnitude. Empty buckets are skipped rather than
// emitting zeros, so the output never shows artificial dips.
//
// The input is never mutated. If the series already fits it is returned
// unchanged. A non-positive targetPoints is a caller bug; the result is nil.
func AdaptiveDecimate(series []float64, targetPoints int) []float64 {
	if targetPoints <= 0 {
		return nil
	}
	if len(series) <= targetPoints {
		return series
	}

	ratio := float64(len(series)) / float64(targetPoints)
	useRMS := ratio > rmsRatio

	out := make([]float64, 0, targetPoints)
	for i := 0; i < targetPoints; i++ {
		start := int(math.Floor(float64(i) * ratio))
		end := int(math.Floor(float64(i+1) * ratio))
		if end > len(series) {
			end = len(series)
		}
		if start >= end {
			continue
		}
		bucket := series[start:end]
		if useRMS {
			out = append(out, rms(bucket))
		} else {
			out = append(out, peak(bucket))
		}
	}
	return out
}

func bucketMinMax(bucket []float64) (lo, hi float64) {
	lo, hi = bucket[0], bucket[0]
	for _, v := range bucket[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// peak returns the signed sample with the largest magnitude.
func peak(bucket []float64) float64 {
	p := bucket[0]
	for _, v := range bucket[1:] {
		if math.Abs(v) > math.Abs(p) {
			p = v
		}
	}
	return p
}

func rms(bucket []float64) float64 {
	sum := 0.0
	for _, v := range bucket {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(bucket)))
}
