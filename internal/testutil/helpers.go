// Package testutil provides reusable test helpers for the nyquist packages.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	Float32Tolerance = 1e-6
	PhaseTolerance   = 1e-9
)

// recordStride mirrors vertex.Stride without importing it.
const recordStride = 12

// AssertComplexInDelta verifies that both parts of actual are within delta of expected.
func AssertComplexInDelta(t *testing.T, expected, actual complex128, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if cmplx.Abs(expected-actual) > delta {
		return assert.Fail(t, "complex values differ",
			"expected %v, got %v (|diff|=%e > %e)", expected, actual, cmplx.Abs(expected-actual), delta)
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
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

// AssertRecordPoints verifies that every control point stored in the
// packed vertex records equals want within tolerance.
func AssertRecordPoints(t *testing.T, data []float32, want complex128, tolerance float64) bool {
	t.Helper()
	if len(data)%recordStride != 0 {
		return assert.Fail(t, "partial record", "len %d is not a multiple of %d", len(data), recordStride)
	}
	for r := 0; r < len(data); r += recordStride {
		for k := range 4 {
			got := complex(float64(data[r+k]), float64(data[r+4+k]))
			if cmplx.Abs(got-want) > tolerance {
				return assert.Fail(t, "control point mismatch",
					"record %d point %d = %v, want %v", r/recordStride, k, got, want)
			}
		}
	}
	return true
}
