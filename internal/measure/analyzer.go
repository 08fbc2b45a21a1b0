// Package measure estimates the transfer function between a reference and a
// measured signal. An Analyzer is the measurement source of a Nyquist plot:
// per frequency bin it reports the phase and magnitude of H = Sxy/Sxx and the
// magnitude-squared coherence of the pair.
package measure

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-nyquist/internal/mathutil"
	"github.com/tphakala/go-nyquist/internal/window"
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Analysis limits and defaults.
const (
	MinSize     = 16
	MaxSize     = 1 << 20
	DefaultSize = 1 << 14

	// DefaultAveraging is the weight of a new block in the running
	// average. 1 disables averaging.
	DefaultAveraging = 0.25
)

// ErrInvalidConfig indicates invalid analyzer parameters.
var ErrInvalidConfig = errors.New("invalid measurement configuration")

// ErrBlockSize is returned by Add when a block does not match Config.Size.
var ErrBlockSize = errors.New("block size mismatch")

// Config holds analyzer parameters.
type Config struct {
	// SampleRate of both signals in Hz.
	SampleRate float64

	// Size is the transform length in samples. Must be even.
	Size int

	// Window is the analysis window shape.
	Window window.Kind

	// Beta is the Kaiser window β. 0 derives it from
	// window.DefaultAttenuation.
	Beta float64

	// Averaging is the exponential averaging weight in (0, 1].
	Averaging float64
}

// DefaultConfig returns a Kaiser-windowed configuration for rate.
func DefaultConfig(rate float64) Config {
	return Config{
		SampleRate: rate,
		Size:       DefaultSize,
		Window:     window.KindKaiser,
		Averaging:  DefaultAveraging,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if c.Size < MinSize || c.Size > MaxSize || c.Size%2 != 0 {
		return fmt.Errorf("%w: size must be even and in [%d, %d], got %d",
			ErrInvalidConfig, MinSize, MaxSize, c.Size)
	}
	if !(c.Averaging > 0) || c.Averaging > 1 {
		return fmt.Errorf("%w: averaging must be in (0, 1], got %v", ErrInvalidConfig, c.Averaging)
	}
	if c.Beta < 0 {
		return fmt.Errorf("%w: kaiser beta must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Analyzer accumulates averaged auto and cross spectra. It is not safe for
// concurrent use; render a frame only between calls to Add.
type Analyzer struct {
	cfg    Config
	fft    *fourier.FFT
	window []float64

	refBlock, measBlock []float64
	refSpec, measSpec   []complex128
	conj, cross         []complex128
	refPow, measPow     []float64

	sxx, syy []float64
	sxy      []complex128

	frames int
	active bool
}

// New creates an analyzer.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, err := window.New(cfg.Window, cfg.Size, cfg.Beta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	bins := cfg.Size/2 + 1
	return &Analyzer{
		cfg:       cfg,
		fft:       fourier.NewFFT(cfg.Size),
		window:    w,
		refBlock:  make([]float64, cfg.Size),
		measBlock: make([]float64, cfg.Size),
		refSpec:   make([]complex128, bins),
		measSpec:  make([]complex128, bins),
		conj:      make([]complex128, bins),
		cross:     make([]complex128, bins),
		refPow:    make([]float64, bins),
		measPow:   make([]float64, bins),
		sxx:       make([]float64, bins),
		syy:       make([]float64, bins),
		sxy:       make([]complex128, bins),
		active:    true,
	}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Frames returns the number of blocks averaged since the last Reset.
func (a *Analyzer) Frames() int {
	return a.frames
}

// SetActive shows or hides the analyzer as a plot source.
func (a *Analyzer) SetActive(active bool) {
	a.active = active
}

// Reset clears the averages.
func (a *Analyzer) Reset() {
	clear(a.sxx)
	clear(a.syy)
	clear(a.sxy)
	a.frames = 0
}

// Add folds one block of each signal into the averages. Both blocks must
// hold exactly Config.Size samples.
func (a *Analyzer) Add(ref, meas []float64) error {
	if len(ref) != a.cfg.Size || len(meas) != a.cfg.Size {
		return fmt.Errorf("%w: got %d and %d samples, want %d",
			ErrBlockSize, len(ref), len(meas), a.cfg.Size)
	}

	if err := window.Apply(a.refBlock, ref, a.window); err != nil {
		return err
	}
	if err := window.Apply(a.measBlock, meas, a.window); err != nil {
		return err
	}
	a.refSpec = a.fft.Coefficients(a.refSpec, a.refBlock)
	a.measSpec = a.fft.Coefficients(a.measSpec, a.measBlock)

	for i, x := range a.refSpec {
		a.conj[i] = cmplx.Conj(x)
		a.refPow[i] = real(x)*real(x) + imag(x)*imag(x)
		y := a.measSpec[i]
		a.measPow[i] = real(y)*real(y) + imag(y)*imag(y)
	}
	c128.Mul(a.cross, a.conj, a.measSpec)

	if a.frames == 0 {
		copy(a.sxx, a.refPow)
		copy(a.syy, a.measPow)
		copy(a.sxy, a.cross)
	} else {
		alpha := a.cfg.Averaging
		keep := 1 - alpha
		f64.Scale(a.sxx, a.sxx, keep)
		f64.Scale(a.syy, a.syy, keep)
		for i := range a.sxx {
			a.sxx[i] += alpha * a.refPow[i]
			a.syy[i] += alpha * a.measPow[i]
			a.sxy[i] = a.sxy[i]*complex(keep, 0) + a.cross[i]*complex(alpha, 0)
		}
	}
	a.frames++
	return nil
}

// Feed splits both signals into blocks of Config.Size samples starting every
// hop samples and adds each one. It returns the number of blocks added.
func (a *Analyzer) Feed(ref, meas []float64, hop int) (int, error) {
	if hop < 1 {
		return 0, fmt.Errorf("%w: hop must be positive", ErrInvalidConfig)
	}
	n := min(len(ref), len(meas))
	added := 0
	for start := 0; start+a.cfg.Size <= n; start += hop {
		end := start + a.cfg.Size
		if err := a.Add(ref[start:end], meas[start:end]); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Active reports whether the analyzer has data to show.
func (a *Analyzer) Active() bool {
	return a.active && a.frames > 0
}

// Size returns the number of frequency bins, DC to Nyquist inclusive.
func (a *Analyzer) Size() int {
	return len(a.sxx)
}

// Frequency returns the centre frequency of bin i in Hz.
func (a *Analyzer) Frequency(i int) float64 {
	return float64(i) * a.cfg.SampleRate / float64(a.cfg.Size)
}

// Resolution returns the equivalent noise bandwidth of one bin in Hz, which
// widens with the taper of the analysis window.
func (a *Analyzer) Resolution() float64 {
	return window.ENBW(a.window) * a.cfg.SampleRate / float64(a.cfg.Size)
}

// Response returns the transfer function estimate H = Sxy/Sxx of bin i, or 0
// when the reference has no energy there.
func (a *Analyzer) Response(i int) complex128 {
	if a.sxx[i] == 0 {
		return 0
	}
	return a.sxy[i] / complex(a.sxx[i], 0)
}

// Phase returns the unit phasor of H for bin i, or 0 when H is undefined.
func (a *Analyzer) Phase(i int) complex128 {
	unit, ok := mathutil.UnitPhasor(a.Response(i))
	if !ok {
		return 0
	}
	return unit
}

// MagnitudeRaw returns |H| for bin i.
func (a *Analyzer) MagnitudeRaw(i int) float64 {
	return cmplx.Abs(a.Response(i))
}

// Coherence returns |Sxy|²/(Sxx·Syy) for bin i, clamped to [0, 1].
func (a *Analyzer) Coherence(i int) float64 {
	den := a.sxx[i] * a.syy[i]
	if den == 0 {
		return 0
	}
	s := a.sxy[i]
	g := (real(s)*real(s) + imag(s)*imag(s)) / den
	return min(max(g, 0), 1)
}
