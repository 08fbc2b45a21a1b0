// Package window provides the analysis windows applied to measurement blocks
// before they are transformed.
package window

import (
	"fmt"
	"math"

	dspwindow "github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/tphakala/go-nyquist/internal/mathutil"
)

const (
	// Window normalization
	windowNormalizationFactor = 2.0

	// Single-sample windows are rectangular
	singleTap = 1.0

	// DefaultAttenuation is the sidelobe attenuation used when a Kaiser window
	// is requested without an explicit β.
	DefaultAttenuation = 90.0

	minLength = 1
)

// Kind selects the window shape.
type Kind int

const (
	// KindKaiser is a Kaiser window; β controls the sidelobe level.
	KindKaiser Kind = iota

	// KindHann is a raised-cosine window.
	KindHann

	// KindRectangular applies no tapering.
	KindRectangular
)

// String returns the lower-case window name.
func (k Kind) String() string {
	switch k {
	case KindKaiser:
		return "kaiser"
	case KindHann:
		return "hann"
	case KindRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// ParseKind converts a window name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "kaiser":
		return KindKaiser, nil
	case "hann":
		return KindHann, nil
	case "rectangular", "rect", "none":
		return KindRectangular, nil
	default:
		return 0, fmt.Errorf("unknown window %q", name)
	}
}

// New builds a window of the given kind and length. beta is only used for
// KindKaiser; pass 0 to derive it from DefaultAttenuation.
func New(kind Kind, length int, beta float64) ([]float64, error) {
	if length < minLength {
		return nil, fmt.Errorf("invalid window length %d", length)
	}
	switch kind {
	case KindKaiser:
		if beta <= 0 {
			beta = mathutil.KaiserBeta(DefaultAttenuation)
		}
		return Kaiser(length, beta), nil
	case KindHann:
		return dspwindow.Hann(length)
	case KindRectangular:
		return dspwindow.Generate(dspwindow.TypeRectangular, length), nil
	default:
		return nil, fmt.Errorf("unsupported window kind %d", kind)
	}
}

// Kaiser generates a Kaiser window of the specified length and β parameter.
//
// The window is symmetric: w[i] = w[length-1-i], with a peak of 1.0 in the
// middle.
//
//	w[n] = I₀(β * sqrt(1 - ((n - α)/α)²)) / I₀(β),  α = (N-1)/2
func Kaiser(length int, beta float64) []float64 {
	if length < minLength {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = singleTap
		return window
	}

	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		arg := beta * math.Sqrt(max(0, 1.0-x*x))
		window[n] = mathutil.BesselI0(arg) / i0Beta
	}

	return window
}

// ENBW returns the equivalent noise bandwidth of w in bins, or 0 for an
// empty or zero-sum window.
func ENBW(w []float64) float64 {
	bins, err := dspwindow.EquivalentNoiseBandwidth(w)
	if err != nil {
		return 0
	}
	return bins
}

// Apply multiplies src by w into dst. All slices must share a length.
func Apply(dst, src, w []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("window: destination holds %d samples, source %d", len(dst), len(src))
	}
	copy(dst, src)
	return dspwindow.ApplyCoefficientsInPlace(dst, w)
}
