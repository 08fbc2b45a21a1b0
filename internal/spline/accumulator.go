// Package spline folds raw bins into octave-band control points and
// assembles them into four-point segments for the curve stage.
package spline

import (
	"fmt"
	"math/cmplx"

	"github.com/tphakala/go-nyquist/internal/mathutil"
)

// DegeneratePolicy decides what Close does when the averaged phasor of a
// band has zero length, which happens when the folded phasors cancel.
type DegeneratePolicy int

const (
	// DegenerateZero places the control point at the origin.
	DegenerateZero DegeneratePolicy = iota

	// DegenerateNaN lets the undefined direction propagate as NaN.
	DegenerateNaN

	// DegenerateSkip drops the band; it produces no control point.
	DegenerateSkip
)

// String returns the policy name.
func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateZero:
		return "zero"
	case DegenerateNaN:
		return "nan"
	case DegenerateSkip:
		return "skip"
	default:
		return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
	}
}

// ParseDegeneratePolicy converts a policy name to a DegeneratePolicy.
func ParseDegeneratePolicy(name string) (DegeneratePolicy, error) {
	switch name {
	case "zero":
		return DegenerateZero, nil
	case "nan":
		return DegenerateNaN, nil
	case "skip":
		return DegenerateSkip, nil
	default:
		return 0, fmt.Errorf("unknown degenerate policy %q", name)
	}
}

// Accumulator is the running sum of one octave band. The zero value is an
// empty band. Fold returns the updated value; nothing is shared between
// bands.
type Accumulator struct {
	PhaseSum     complex128
	MagnitudeSum float64
	CoherenceSum float64
	Count        int
}

// Fold adds one bin to the band.
func (a Accumulator) Fold(phase complex128, magnitude, coherence float64) Accumulator {
	a.PhaseSum += phase
	a.MagnitudeSum += magnitude
	a.CoherenceSum += coherence
	a.Count++
	return a
}

// Empty reports whether no bin has been folded in.
func (a Accumulator) Empty() bool {
	return a.Count == 0
}

// ControlPoint is one closed band ready for the curve stage.
type ControlPoint struct {
	// Direction is the unit mean phase scaled by the mean magnitude.
	Direction complex128

	// Coherence is the mean coherence of the band.
	Coherence float64

	// Frequency is the band centre in Hz.
	Frequency float64

	// Degenerate is set when the mean phasor had zero length.
	Degenerate bool
}

// Close normalizes the band into a control point. This is the only place
// sums are divided by the bin count.
//
// ok is false for an empty band, and for a degenerate band under
// DegenerateSkip.
func (a Accumulator) Close(policy DegeneratePolicy) (ControlPoint, bool) {
	if a.Count == 0 {
		return ControlPoint{}, false
	}

	n := float64(a.Count)
	mean := a.PhaseSum / complex(n, 0)
	magnitude := a.MagnitudeSum / n

	point := ControlPoint{Coherence: a.CoherenceSum / n}

	unit, ok := mathutil.UnitPhasor(mean)
	if ok {
		point.Direction = unit * complex(magnitude, 0)
		return point, true
	}

	point.Degenerate = true
	switch policy {
	case DegenerateSkip:
		return point, false
	case DegenerateNaN:
		point.Direction = cmplx.NaN()
	default:
		point.Direction = 0
	}
	return point, true
}
