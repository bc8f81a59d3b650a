// Package testutil provides reusable test helper functions for the estimator tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	RateTolerance    = 1e-6
	PressureDelta    = 1e-9
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertFinite verifies that a scalar is neither NaN nor Inf.
func AssertFinite(t *testing.T, v float64, msgAndArgs ...any) bool {
	t.Helper()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return assert.Fail(t, "value not finite", msgAndArgs...)
	}
	return true
}

// AssertStrictlyIncreasing verifies that every index is greater than its predecessor.
func AssertStrictlyIncreasing(t *testing.T, s []int, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return assert.Fail(t, "not strictly increasing",
				"s[%d]=%d <= s[%d]=%d", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertIndicesInterior verifies that every index lies in [1, n-2].
func AssertIndicesInterior(t *testing.T, s []int, n int, msgAndArgs ...any) bool {
	t.Helper()
	for i, idx := range s {
		if idx < 1 || idx > n-2 {
			return assert.Fail(t, "index outside interior",
				"s[%d]=%d is outside [1, %d]", i, idx, n-2)
		}
	}
	return true
}

// AssertMinSpacing verifies that consecutive indices are more than gap apart.
func AssertMinSpacing(t *testing.T, s []int, gap float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if float64(s[i]-s[i-1]) <= gap {
			return assert.Fail(t, "indices too close",
				"s[%d]=%d and s[%d]=%d are within %f", i-1, s[i-1], i, s[i], gap)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
