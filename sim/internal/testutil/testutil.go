// Package testutil provides shared test infrastructure for the field engine:
// tolerance assertions and a deterministic stand-in for the external
// eigenmode solver, used across the sim/ test packages.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertComplexNear compares two complex values with an absolute tolerance on
// their distance.
func AssertComplexNear(t *testing.T, name string, want, got complex128, absTol float64) {
	t.Helper()
	if d := cmplx.Abs(want - got); d > absTol {
		t.Errorf("%s: got %v, want %v (|diff|=%v)", name, got, want, d)
	}
}
