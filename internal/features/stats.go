// Package features computes the statistical, modulation and spectral
// features the estimators derive from a filtered BVP window.
//
// Every function is pure. Degenerate inputs (empty slices, zero variance,
// too few peaks) resolve to 0 rather than NaN or an error.
package features

import (
	"math"
	"slices"

	"github.com/tphakala/go-bvp-vitals/internal/simdops"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// sigmaEpsilon is the relative spread below which a window is treated as
	// constant. Summation error leaves a constant window with a tiny nonzero σ.
	sigmaEpsilon = 1e-12

	// Excess kurtosis subtracts the normal distribution's value.
	normalKurtosis = 3.0

	upperQuartile = 0.75
	halfDivisor   = 2
)

// Mean returns the population mean, or 0 for an empty slice.
func Mean(x []float64) float64 {
	return simdops.Mean(x)
}

// StdDev returns the population standard deviation, or 0 for fewer than one sample.
func StdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(x, nil)
	return std
}

// isConstant reports whether σ is too small to divide by.
func isConstant(mean, std float64) bool {
	return std <= sigmaEpsilon*math.Max(1, math.Abs(mean))
}

// Skewness returns Σ(x−mean)³ / (n·σ³), or 0 when σ is zero.
func Skewness(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	if isConstant(mean, std) {
		return 0
	}
	return stat.Moment(3, x, nil) / (std * std * std)
}

// Kurtosis returns the excess kurtosis Σ(x−mean)⁴ / (n·σ⁴) − 3, or 0 when σ is zero.
func Kurtosis(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	if isConstant(mean, std) {
		return 0
	}
	s2 := std * std
	return stat.Moment(4, x, nil)/(s2*s2) - normalKurtosis
}

// Amplitude returns max − min.
func Amplitude(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Max(x) - floats.Min(x)
}

// Diff returns the first differences x[i+1] − x[i].
func Diff(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	floats.SubTo(out, x[1:], x[:len(x)-1])
	return out
}

// DiffStdDev returns the standard deviation of the first differences, a
// proxy for beat-to-beat timing irregularity.
func DiffStdDev(x []float64) float64 {
	return StdDev(Diff(x))
}

// Median returns the middle sorted value, the mean of the two middle values
// for even lengths, and 0 for an empty slice. x is not modified.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)

	if n%halfDivisor == 0 {
		return (sorted[n/halfDivisor-1] + sorted[n/halfDivisor]) / halfDivisor
	}
	return sorted[n/halfDivisor]
}

// UpperQuartile returns the sorted value at index ceil(0.75·n), clamped to
// the last element, or 0 for an empty slice.
func UpperQuartile(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)

	idx := int(math.Ceil(upperQuartile * float64(n)))
	return sorted[min(idx, n-1)]
}

// MovingAverage smooths x with a centred boxcar of the given width. Widths
// below 2 return a copy of x. Edges average over the samples available.
func MovingAverage(x []float64, width int) []float64 {
	out := slices.Clone(x)
	if width < 2 || len(x) == 0 {
		return out
	}

	half := width / halfDivisor
	for i := range x {
		lo := max(0, i-half)
		hi := min(len(x), i-half+width)
		out[i] = simdops.Mean(x[lo:hi])
	}
	return out
}
