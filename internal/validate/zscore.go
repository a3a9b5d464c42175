package validate

import (
	"math"
	"sort"
)

// zScores standardizes a column as (x - mean) / stddev using the sample
// mean and standard deviation of the whole sequence. NaN entries are
// excluded from the statistics and stay NaN in the output. A sequence
// with no variance (including a single usable value) yields zeros, never
// a division by zero.
func zScores(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}

	n := 0
	sum := 0.0
	for _, x := range xs {
		if !math.IsNaN(x) {
			sum += x
			n++
		}
	}
	if n == 0 {
		copy(out, xs)
		return out
	}
	mean := sum / float64(n)

	std := 0.0
	if n > 1 {
		variance := 0.0
		for _, x := range xs {
			if !math.IsNaN(x) {
				d := x - mean
				variance += d * d
			}
		}
		std = math.Sqrt(variance / float64(n-1))
	}

	for i, x := range xs {
		switch {
		case math.IsNaN(x):
			out[i] = math.NaN()
		case std == 0:
			out[i] = 0
		default:
			out[i] = (x - mean) / std
		}
	}
	return out
}

// mean and sampleStd are the shared building blocks for the per-ticker
// systematic-error statistics.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	variance := 0.0
	for _, x := range xs {
		d := x - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)-1))
}

// median returns the middle value (average of the two middle values for
// even counts) without mutating its input.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
