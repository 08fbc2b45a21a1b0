// Package cli holds the flag handling shared by the nyquist commands.
package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tphakala/go-nyquist"
	"github.com/tphakala/go-nyquist/internal/measure"
	"github.com/tphakala/go-nyquist/internal/spline"
	"github.com/tphakala/go-nyquist/internal/wavio"
	"github.com/tphakala/go-nyquist/internal/window"
)

// Flags are the analysis and rendering options common to every command.
type Flags struct {
	PointsPerOctave uint
	Coherence       bool
	Threshold       float64
	StartFrequency  float64
	Policy          string

	Size      int
	Window    string
	Beta      float64
	Averaging float64
	Hop       int
	Channel   int

	Verbose bool
}

// Register declares the flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.UintVar(&f.PointsPerOctave, "ppo", nyquist.DefaultPointsPerOctave, "Points per octave (1-96)")
	fs.BoolVar(&f.Coherence, "coherence", false, "Dim spans below the coherence threshold")
	fs.Float64Var(&f.Threshold, "threshold", float64(nyquist.DefaultCoherenceThreshold), "Coherence threshold (0-1)")
	fs.Float64Var(&f.StartFrequency, "start", nyquist.DefaultStartFrequency, "Lower edge of the first band in Hz")
	fs.StringVar(&f.Policy, "degenerate", nyquist.DefaultDegeneratePolicy.String(), "Cancelled bands: zero, nan, skip")

	fs.IntVar(&f.Size, "size", measure.DefaultSize, "Transform length in samples")
	fs.StringVar(&f.Window, "window", window.KindKaiser.String(), "Analysis window: kaiser, hann, rectangular")
	fs.Float64Var(&f.Beta, "beta", 0, "Kaiser window beta (0 = derive from 90 dB attenuation)")
	fs.Float64Var(&f.Averaging, "avg", measure.DefaultAveraging, "Exponential averaging weight (0-1]")
	fs.IntVar(&f.Hop, "hop", 0, "Samples between blocks (0 = size/2)")
	fs.IntVar(&f.Channel, "channel", 0, "Channel to analyze in multichannel files")

	fs.BoolVar(&f.Verbose, "v", false, "Verbose output")
}

// RenderConfig returns the validated render configuration.
func (f *Flags) RenderConfig() (nyquist.RenderConfig, error) {
	cfg := nyquist.RenderConfig{
		PointsPerOctave:    f.PointsPerOctave,
		CoherenceGate:      f.Coherence,
		CoherenceThreshold: float32(f.Threshold),
	}
	if err := cfg.Validate(); err != nil {
		return nyquist.RenderConfig{}, err
	}
	return cfg, nil
}

// Options returns the renderer options.
func (f *Flags) Options() ([]nyquist.Option, error) {
	policy, err := spline.ParseDegeneratePolicy(f.Policy)
	if err != nil {
		return nil, err
	}
	return []nyquist.Option{
		nyquist.WithStartFrequency(f.StartFrequency),
		nyquist.WithDegeneratePolicy(policy),
	}, nil
}

// AnalyzerConfig returns the analyzer configuration for rate.
func (f *Flags) AnalyzerConfig(rate float64) (measure.Config, error) {
	kind, err := window.ParseKind(f.Window)
	if err != nil {
		return measure.Config{}, err
	}
	cfg := measure.Config{
		SampleRate: rate,
		Size:       f.Size,
		Window:     kind,
		Beta:       f.Beta,
		Averaging:  f.Averaging,
	}
	if err := cfg.Validate(); err != nil {
		return measure.Config{}, err
	}
	return cfg, nil
}

// HopSize returns the block advance in samples.
func (f *Flags) HopSize() int {
	if f.Hop > 0 {
		return f.Hop
	}
	return max(f.Size/2, 1)
}

// Input is a loaded reference/measurement pair with an analyzer sized for it.
type Input struct {
	Ref, Meas []float64
	Rate      int
	Analyzer  *measure.Analyzer
}

// Load reads the two files and creates the analyzer.
func (f *Flags) Load(refPath, measPath string) (*Input, error) {
	ref, meas, err := wavio.LoadPair(refPath, measPath)
	if err != nil {
		return nil, err
	}
	cfg, err := f.AnalyzerConfig(float64(ref.Rate))
	if err != nil {
		return nil, err
	}
	a, err := measure.New(cfg)
	if err != nil {
		return nil, err
	}
	in := &Input{
		Ref:      ref.Channel(f.Channel),
		Meas:     meas.Channel(f.Channel),
		Rate:     ref.Rate,
		Analyzer: a,
	}
	if n := min(len(in.Ref), len(in.Meas)); n < cfg.Size {
		return nil, fmt.Errorf("recordings hold %d samples, need at least %d", n, cfg.Size)
	}
	return in, nil
}

// SetupLogging routes library logs to stderr, at debug level when verbose.
func (f *Flags) SetupLogging() {
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	nyquist.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
