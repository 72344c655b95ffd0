// Package stats provides the percentile and averaging helpers used for
// corpus-wide outlier flags.
package stats

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Method selects how percentiles interpolate between samples.
type Method string

const (
	// Linear interpolates between the two nearest ranks at (n-1)*p/100,
	// matching numpy's default percentile.
	Linear Method = "linear"
	// Empirical returns the smallest sample whose empirical CDF reaches p.
	Empirical Method = "empirical"
	// LinInterp linearly interpolates the empirical CDF.
	LinInterp Method = "lininterp"
	// Nearest indexes the sorted samples at p*n/100.
	Nearest Method = "nearest"
)

func (m Method) String() string { return string(m) }

// ParseMethod validates a configured percentile method name.
func ParseMethod(name string) (Method, error) {
	switch m := Method(name); m {
	case "":
		return Linear, nil
	case Linear, Empirical, LinInterp, Nearest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown percentile method %q", name)
	}
}

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// LinearPercentile interpolates the p-th percentile of a sorted slice.
// Returns 0 if the slice is empty.
func LinearPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	h := float64(n-1) * p / 100
	if h <= 0 {
		return sorted[0]
	}
	if h >= float64(n-1) {
		return sorted[n-1]
	}
	lo := math.Floor(h)
	i := int(lo)
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Percentiles computes each requested percentile of values with method.
// values is not modified.
func Percentiles(values []float64, ps []int, method Method) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	out := make([]float64, len(ps))
	if len(sorted) == 0 {
		return out
	}
	for i, p := range ps {
		switch method {
		case Empirical:
			out[i] = stat.Quantile(float64(p)/100, stat.Empirical, sorted, nil)
		case LinInterp:
			out[i] = stat.Quantile(float64(p)/100, stat.LinInterp, sorted, nil)
		case Nearest:
			out[i] = Percentile(sorted, p)
		default:
			out[i] = LinearPercentile(sorted, float64(p))
		}
	}
	return out
}

// Mean returns the arithmetic mean of values, or 0 when empty.
func Mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Ratio returns num/den, or 0 when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
