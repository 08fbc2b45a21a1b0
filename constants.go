package nyquist

import (
	"github.com/tphakala/go-nyquist/internal/octave"
	"github.com/tphakala/go-nyquist/internal/spline"
)

// Resolution limits of the control-side configuration.
const (
	MinPointsPerOctave     = 1
	MaxPointsPerOctave     = 96
	DefaultPointsPerOctave = 12
)

// Coherence gate defaults.
const (
	DefaultCoherenceThreshold float32 = 0.7
	coherenceAlphaOn          float32 = 1
	coherenceAlphaOff         float32 = 0
)

// Stroke defaults.
const (
	DefaultLineWidth   float32 = 2
	DefaultRetinaScale float32 = 1
)

// DegeneratePolicy selects how a band whose phasors cancel is drawn.
type DegeneratePolicy = spline.DegeneratePolicy

// Degenerate band policies.
const (
	DegenerateZero = spline.DegenerateZero
	DegenerateNaN  = spline.DegenerateNaN
	DegenerateSkip = spline.DegenerateSkip
)

const (
	// DefaultStartFrequency is the lower edge of the first band in Hz.
	DefaultStartFrequency = octave.DefaultStartFrequency

	// DefaultDegeneratePolicy places cancelled bands at the origin.
	DefaultDegeneratePolicy = DegenerateZero
)
