package nyquist_test

import (
	"bytes"
	"log/slog"
	"math"
	"math/cmplx"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-nyquist"
	"github.com/tphakala/go-nyquist/internal/gpu/gputest"
	"github.com/tphakala/go-nyquist/internal/testutil"
	"github.com/tphakala/go-nyquist/internal/vertex"
)

func newTestRenderer(t *testing.T, cfg nyquist.RenderConfig, opts ...nyquist.Option) (*nyquist.Renderer, *gputest.Recorder) {
	t.Helper()
	rec := &gputest.Recorder{}
	r := nyquist.NewRenderer(rec, rec, opts...)
	r.Synchronize(cfg.Settings())
	return r, rec
}

func config(ppo uint) nyquist.RenderConfig {
	cfg := nyquist.DefaultRenderConfig()
	cfg.PointsPerOctave = ppo
	return cfg
}

func TestRender_OneOctaveTwelveBands(t *testing.T) {
	r, rec := newTestRenderer(t, config(12))
	src := testutil.LogSpectrum(144, nyquist.DefaultStartFrequency, 1)

	stats := r.Render(src)
	assert.Equal(t, 12, stats.Bands)
	assert.Equal(t, 12, stats.Emitted)
	assert.Zero(t, stats.Dropped)
	assert.Zero(t, stats.Degenerate)

	upload := rec.LastUpload()
	require.Len(t, upload, 12*vertex.Stride)
	testutil.AssertRecordPoints(t, upload, 1, testutil.Float32Tolerance)
	for rIdx := 0; rIdx < len(upload); rIdx += vertex.Stride {
		assert.Equal(t, []float32{1, 1, 1, 1}, upload[rIdx+vertex.ControlOffset:rIdx+vertex.Stride])
	}
	assert.Equal(t, []int{12}, rec.Find("DrawPoints")[0].Args)
}

func TestRender_CircularMean(t *testing.T) {
	r, rec := newTestRenderer(t, config(1))
	src := testutil.LogSpectrum(4, nyquist.DefaultStartFrequency, 1)
	// Angles straddling ±π average to π, not 0.
	src.Phases = []complex128{-1 + 0.1i, -1 - 0.1i, -1 + 0.1i, -1 - 0.1i}
	src.Magnitudes = []float64{1, 3, 1, 3}

	stats := r.Render(src)
	require.Equal(t, 1, stats.Emitted)
	testutil.AssertRecordPoints(t, rec.LastUpload(), -2, testutil.Float32Tolerance)
}

func TestRender_CoherenceControls(t *testing.T) {
	r, rec := newTestRenderer(t, config(1))
	src := testutil.LogSpectrum(2, nyquist.DefaultStartFrequency, 1)
	src.Coherences = []float64{0.25, 0.75}

	r.Render(src)
	upload := rec.LastUpload()
	require.Len(t, upload, vertex.Stride)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5, 0.5}, upload[vertex.ControlOffset:], 1e-7)
}

func TestRender_Deterministic(t *testing.T) {
	r, rec := newTestRenderer(t, config(24))
	src := testutil.LogSpectrum(500, 20, 10)
	for i := range src.Phases {
		src.Phases[i] = complex(float64(i%7)-3, float64(i%5)-2)
		src.Magnitudes[i] = float64(i%11) + 0.5
		src.Coherences[i] = float64(i%10) / 10
	}

	first := r.Render(src)
	a := slices.Clone(rec.LastUpload())
	second := r.Render(src)
	b := rec.LastUpload()

	assert.Equal(t, first.Emitted, second.Emitted)
	assert.Equal(t, a, b)
	testutil.AssertNoNaNOrInf(t, b)
}

func TestRender_Overflow(t *testing.T) {
	var buf bytes.Buffer
	orig := nyquist.Logger()
	t.Cleanup(func() { nyquist.SetLogger(orig) })
	nyquist.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	r, rec := newTestRenderer(t, config(1))
	// One bin per octave over 14 octaves; capacity is 12 records.
	src := testutil.LogSpectrum(14, nyquist.DefaultStartFrequency, 14)

	stats := r.Render(src)
	assert.Equal(t, 14, stats.Bands)
	assert.Equal(t, 12, stats.Emitted)
	assert.Equal(t, 2, stats.Dropped)
	assert.Len(t, rec.LastUpload(), vertex.Capacity(1))
	assert.Contains(t, buf.String(), "vertex record dropped")

	// The next frame starts clean.
	small := testutil.LogSpectrum(3, nyquist.DefaultStartFrequency, 3)
	stats = r.Render(small)
	assert.Equal(t, 3, stats.Emitted)
	assert.Zero(t, stats.Dropped)
}

func TestRender_DegeneratePolicies(t *testing.T) {
	opposite := func() *testutil.Spectrum {
		src := testutil.LogSpectrum(2, nyquist.DefaultStartFrequency, 1)
		src.Phases = []complex128{1, -1}
		return src
	}

	t.Run("zero", func(t *testing.T) {
		r, rec := newTestRenderer(t, config(1), nyquist.WithDegeneratePolicy(nyquist.DegenerateZero))
		stats := r.Render(opposite())
		assert.Equal(t, 1, stats.Degenerate)
		assert.Equal(t, 1, stats.Emitted)
		testutil.AssertNoNaNOrInf(t, rec.LastUpload())
		testutil.AssertRecordPoints(t, rec.LastUpload(), 0, 0)
	})

	t.Run("nan", func(t *testing.T) {
		r, rec := newTestRenderer(t, config(1), nyquist.WithDegeneratePolicy(nyquist.DegenerateNaN))
		stats := r.Render(opposite())
		assert.Equal(t, 1, stats.Degenerate)
		assert.Equal(t, 1, stats.Emitted)
		assert.True(t, slices.ContainsFunc(rec.LastUpload(), func(v float32) bool { return math.IsNaN(float64(v)) }))
	})

	t.Run("skip", func(t *testing.T) {
		r, rec := newTestRenderer(t, config(1), nyquist.WithDegeneratePolicy(nyquist.DegenerateSkip))
		stats := r.Render(opposite())
		assert.Equal(t, 1, stats.Bands)
		assert.Equal(t, 1, stats.Degenerate)
		assert.Zero(t, stats.Emitted)
		assert.Empty(t, rec.LastUpload())
		testutil.AssertNoNaNOrInf(t, rec.LastUpload())
	})

	t.Run("non-finite input is not degenerate", func(t *testing.T) {
		r, rec := newTestRenderer(t, config(1), nyquist.WithDegeneratePolicy(nyquist.DegenerateZero))
		src := testutil.LogSpectrum(2, nyquist.DefaultStartFrequency, 1)
		src.Phases[1] = cmplx.NaN()

		stats := r.Render(src)
		assert.Zero(t, stats.Degenerate)
		assert.Equal(t, 1, stats.Emitted)
		assert.True(t, slices.ContainsFunc(rec.LastUpload(), func(v float32) bool { return math.IsNaN(float64(v)) }))
	})
}

func TestRender_IdenticalBins(t *testing.T) {
	r, rec := newTestRenderer(t, config(3))
	// 24 bins over two octaves, four bins per 1/3-octave band.
	src := testutil.LogSpectrum(24, nyquist.DefaultStartFrequency, 2).Fill(cmplx.Rect(1, math.Pi/3), 0.8, 0.9)

	stats := r.Render(src)
	assert.Equal(t, 6, stats.Bands)
	assert.Equal(t, 6, stats.Emitted)

	upload := rec.LastUpload()
	testutil.AssertNoNaNOrInf(t, upload)
	testutil.AssertRecordPoints(t, upload, cmplx.Rect(0.8, math.Pi/3), testutil.Float32Tolerance)
	for i := 0; i < len(upload); i += vertex.Stride {
		assert.InDeltaSlice(t, []float32{0.9, 0.9, 0.9, 0.9}, upload[i+vertex.ControlOffset:i+vertex.Stride], 1e-6)
	}
}

func TestRender_NoOpFrames(t *testing.T) {
	tests := []struct {
		name string
		cfg  nyquist.RenderConfig
		src  nyquist.Source
	}{
		{"nil source", config(12), nil},
		{"inactive", config(12), &testutil.Spectrum{Freqs: []float64{100}, Phases: []complex128{1},
			Magnitudes: []float64{1}, Coherences: []float64{1}, Inactive: true}},
		{"empty", config(12), &testutil.Spectrum{}},
		{"not synchronized", nyquist.RenderConfig{}, testutil.LogSpectrum(8, 100, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &gputest.Recorder{}
			r := nyquist.NewRenderer(rec, rec)
			if tt.cfg.PointsPerOctave != 0 {
				r.Synchronize(tt.cfg.Settings())
			}
			assert.Equal(t, nyquist.FrameStats{}, r.Render(tt.src))
			assert.Empty(t, rec.Calls)
		})
	}
}

func TestRender_ResizesOnlyOnResolutionChange(t *testing.T) {
	r, rec := newTestRenderer(t, config(12))
	src := testutil.LogSpectrum(64, 50, 6)

	assert.True(t, r.Render(src).Resized)
	assert.False(t, r.Render(src).Resized)

	r.Synchronize(config(12).Settings())
	assert.False(t, r.Render(src).Resized)

	r.Synchronize(config(24).Settings())
	assert.True(t, r.Render(src).Resized)

	assert.Equal(t, 2, rec.Count("BufferData"))
	assert.Equal(t, 1, rec.Count("GenBuffer"))
	assert.Equal(t, []int{vertex.Capacity(24) * vertex.BytesPerFloat}, rec.Find("BufferData")[1].Args)
}

func TestSynchronize_NilKeepsConfig(t *testing.T) {
	cfg := nyquist.RenderConfig{PointsPerOctave: 6, CoherenceGate: true, CoherenceThreshold: 0.4}
	r, _ := newTestRenderer(t, cfg)

	r.Synchronize(nil)
	assert.Equal(t, cfg, r.Config())

	var plot *nyquist.Plot
	r.Synchronize(plot)
	assert.Equal(t, cfg, r.Config())

	r.Synchronize(nyquist.NewPlot())
	assert.Equal(t, nyquist.DefaultRenderConfig(), r.Config())
}

// splitSettings reports different values through its getters than through
// Snapshot, as an owner would if it changed between two getter calls.
type splitSettings struct{ snapshot nyquist.RenderConfig }

func (splitSettings) PointsPerOctave() uint            { return 96 }
func (splitSettings) Coherence() bool                  { return false }
func (splitSettings) CoherenceThreshold() float32      { return 0 }
func (s splitSettings) Snapshot() nyquist.RenderConfig { return s.snapshot }

func TestSynchronize_PrefersSnapshot(t *testing.T) {
	r, _ := newTestRenderer(t, config(12))
	want := nyquist.RenderConfig{PointsPerOctave: 6, CoherenceGate: true, CoherenceThreshold: 0.4}

	r.Synchronize(splitSettings{snapshot: want})
	assert.Equal(t, want, r.Config())

	plot, err := nyquist.NewPlotWithConfig(want)
	require.NoError(t, err)
	r.Synchronize(nyquist.NewPlot())
	r.Synchronize(plot)
	assert.Equal(t, plot.Snapshot(), r.Config())
}

func TestRender_Uniforms(t *testing.T) {
	cfg := nyquist.RenderConfig{PointsPerOctave: 12, CoherenceGate: true, CoherenceThreshold: 0.3}
	color := mgl32.Vec4{0.2, 0.4, 0.6, 1}
	r, rec := newTestRenderer(t, cfg, nyquist.WithColor(color), nyquist.WithLineWidth(3))
	r.SetBounds(-2, 2, -1, 1)
	r.SetViewport(800, 600, 2)

	r.Render(testutil.LogSpectrum(24, 100, 2))

	require.Len(t, rec.Uniforms, 1)
	u := rec.Uniforms[0]
	assert.Equal(t, mgl32.Ortho(-2, 2, -1, 1, -1, 1), u.Matrix)
	assert.Equal(t, [2]float32{800, 600}, u.Screen)
	assert.InDelta(t, 6, u.Width, 1e-6)
	assert.Equal(t, color, u.Color)
	assert.InDelta(t, 0.3, u.CoherenceThreshold, 1e-6)
	assert.InDelta(t, 1, u.CoherenceAlpha, 0)

	ops := rec.Ops()
	assert.Less(t, slices.Index(ops, "Use"), slices.Index(ops, "Apply"))
	assert.Less(t, slices.Index(ops, "Apply"), slices.Index(ops, "DrawPoints"))

	cfg.CoherenceGate = false
	r.Synchronize(cfg.Settings())
	r.Render(testutil.LogSpectrum(24, 100, 2))
	assert.Zero(t, rec.Uniforms[1].CoherenceAlpha)
}

func TestRenderer_Release(t *testing.T) {
	r, rec := newTestRenderer(t, config(12))
	r.Render(testutil.LogSpectrum(24, 100, 2))
	r.Release()
	assert.Equal(t, 1, rec.Count("DeleteBuffer"))

	stats := r.Render(testutil.LogSpectrum(24, 100, 2))
	assert.True(t, stats.Resized)
	assert.Equal(t, 2, rec.Count("GenBuffer"))
}

func TestTessellate(t *testing.T) {
	src := testutil.LogSpectrum(144, nyquist.DefaultStartFrequency, 1)

	data, stats, err := nyquist.Tessellate(src, config(12))
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Emitted)
	assert.Len(t, data, 12*vertex.Stride)
	testutil.AssertRecordPoints(t, data, 1, testutil.Float32Tolerance)

	_, _, err = nyquist.Tessellate(src, nyquist.RenderConfig{})
	assert.ErrorIs(t, err, nyquist.ErrInvalidConfig)
}
