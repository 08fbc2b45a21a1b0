package nyquist

import (
	"errors"
	"fmt"
	"math"
)

// Source is one frame of a transfer-function measurement. Bins are ordered
// by ascending frequency. A Source must not change while Render reads it.
type Source interface {
	// Active reports whether the source should be drawn.
	Active() bool

	// Size returns the number of bins.
	Size() int

	// Frequency returns the centre frequency of bin i in Hz.
	Frequency(i int) float64

	// Phase returns the unit phasor of bin i.
	Phase(i int) complex128

	// MagnitudeRaw returns the linear magnitude of bin i.
	MagnitudeRaw(i int) float64

	// Coherence returns the coherence of bin i in [0, 1].
	Coherence(i int) float64
}

// Settings is the control-side view the renderer copies at the
// synchronization point.
type Settings interface {
	PointsPerOctave() uint
	Coherence() bool
	CoherenceThreshold() float32
}

// Common errors.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid nyquist configuration")
)

// RenderConfig is the configuration snapshot one frame renders with.
type RenderConfig struct {
	// PointsPerOctave is the band resolution. Zero means not configured;
	// nothing is drawn.
	PointsPerOctave uint

	// CoherenceGate dims spans whose coherence is below the threshold.
	CoherenceGate bool

	// CoherenceThreshold is the gate level in [0, 1].
	CoherenceThreshold float32
}

// DefaultRenderConfig returns the configuration of a new Plot.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		PointsPerOctave:    DefaultPointsPerOctave,
		CoherenceThreshold: DefaultCoherenceThreshold,
	}
}

// Validate checks if the configuration is valid.
func (c RenderConfig) Validate() error {
	if err := validatePointsPerOctave(c.PointsPerOctave); err != nil {
		return err
	}
	return validateThreshold(c.CoherenceThreshold)
}

func validatePointsPerOctave(ppo uint) error {
	if ppo < MinPointsPerOctave || ppo > MaxPointsPerOctave {
		return fmt.Errorf("%w: points per octave must be %d-%d, got %d",
			ErrInvalidConfig, MinPointsPerOctave, MaxPointsPerOctave, ppo)
	}
	return nil
}

func validateThreshold(threshold float32) error {
	if math.IsNaN(float64(threshold)) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: coherence threshold must be in [0, 1], got %v",
			ErrInvalidConfig, threshold)
	}
	return nil
}

// Settings adapts the snapshot to the Settings interface, so a plain value
// can be handed to Renderer.Synchronize.
func (c RenderConfig) Settings() Settings {
	return configSettings{cfg: c}
}

type configSettings struct{ cfg RenderConfig }

func (s configSettings) PointsPerOctave() uint       { return s.cfg.PointsPerOctave }
func (s configSettings) Coherence() bool             { return s.cfg.CoherenceGate }
func (s configSettings) CoherenceThreshold() float32 { return s.cfg.CoherenceThreshold }
