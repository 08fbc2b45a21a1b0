package mathutil

import (
	"math/cmplx"
)

// UnitPhasor scales z to unit length. ok is false only when |z| is zero; the
// returned value is then NaN+NaNi, which is what the plain division z/|z|
// produces. Non-finite input is divided through and stays non-finite.
func UnitPhasor(z complex128) (complex128, bool) {
	r := cmplx.Abs(z)
	if r == 0 {
		return cmplx.NaN(), false
	}
	return z / complex(r, 0), true
}
