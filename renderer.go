package nyquist

import (
	"log/slog"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tphakala/go-nyquist/internal/gpu"
	"github.com/tphakala/go-nyquist/internal/octave"
	"github.com/tphakala/go-nyquist/internal/spline"
	"github.com/tphakala/go-nyquist/internal/vertex"
)

// Option configures a Renderer.
type Option func(*options)

type options struct {
	startFrequency float64
	policy         DegeneratePolicy
	color          mgl32.Vec4
	lineWidth      float32
}

func defaultOptions() options {
	return options{
		startFrequency: DefaultStartFrequency,
		policy:         DefaultDegeneratePolicy,
		color:          mgl32.Vec4{1, 1, 1, 1},
		lineWidth:      DefaultLineWidth,
	}
}

// WithStartFrequency sets the lower edge of the first band in Hz.
func WithStartFrequency(hz float64) Option {
	return func(o *options) { o.startFrequency = hz }
}

// WithDegeneratePolicy sets how bands whose phasors cancel are drawn.
func WithDegeneratePolicy(p DegeneratePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithColor sets the series color.
func WithColor(c mgl32.Vec4) Option {
	return func(o *options) { o.color = c }
}

// WithLineWidth sets the stroke width in logical pixels.
func WithLineWidth(w float32) Option {
	return func(o *options) { o.lineWidth = w }
}

// FrameStats describes one Render call.
type FrameStats struct {
	// Bands is the number of non-empty bands closed.
	Bands int

	// Emitted is the number of vertex records drawn.
	Emitted int

	// Dropped is the number of records lost to overflow.
	Dropped int

	// Degenerate is the number of bands whose mean phasor had zero length.
	Degenerate int

	// Resized is set when GPU storage was (re)allocated.
	Resized bool
}

// Renderer turns Source frames into the vertex stream of the curve shader
// and draws it. A Renderer is owned by the render thread.
type Renderer struct {
	opts     options
	program  gpu.Program
	manager  *gpu.BufferManager
	vertices vertex.Buffer
	window   spline.Window

	cfg    RenderConfig
	matrix mgl32.Mat4
	screen [2]float32
	retina float32
}

// NewRenderer creates a renderer drawing through device and program. No GPU
// object is created before the first Render.
func NewRenderer(device gpu.Device, program gpu.Program, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if program == nil {
		program = gpu.NopProgram{}
	}
	return &Renderer{
		opts:    o,
		program: program,
		manager: gpu.NewBufferManager(device),
		matrix:  mgl32.Ident4(),
		retina:  DefaultRetinaScale,
	}
}

// Config returns the configuration copied at the last Synchronize.
func (r *Renderer) Config() RenderConfig {
	return r.cfg
}

// snapshotter is implemented by owners that can hand over all settings in
// one consistent read.
type snapshotter interface {
	Snapshot() RenderConfig
}

// Synchronize copies the owner's settings into the renderer. It must be
// called while neither the control thread nor the render thread is
// mid-frame. A nil owner keeps the previous values. Owners with a Snapshot
// method, such as Plot, are read through it so a concurrent update never
// splits across one frame.
func (r *Renderer) Synchronize(owner Settings) {
	if isNil(owner) {
		Logger().Debug("nyquist: synchronize without settings, keeping previous configuration",
			slog.Uint64("points_per_octave", uint64(r.cfg.PointsPerOctave)))
		return
	}
	if s, ok := owner.(snapshotter); ok {
		r.cfg = s.Snapshot()
		return
	}
	r.cfg = RenderConfig{
		PointsPerOctave:    owner.PointsPerOctave(),
		CoherenceGate:      owner.Coherence(),
		CoherenceThreshold: owner.CoherenceThreshold(),
	}
}

func isNil(s Settings) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// SetBounds sets the visible plot area. The real axis runs left to right and
// the imaginary axis bottom to top.
func (r *Renderer) SetBounds(xMin, xMax, yMin, yMax float32) {
	r.matrix = mgl32.Ortho(xMin, xMax, yMin, yMax, -1, 1)
}

// SetViewport sets the framebuffer size in pixels and the device pixel ratio
// the stroke width is scaled by.
func (r *Renderer) SetViewport(width, height int, retina float32) {
	r.screen = [2]float32{float32(width), float32(height)}
	if retina <= 0 {
		retina = DefaultRetinaScale
	}
	r.retina = retina
}

// Render draws one frame of src. Nothing is drawn when src is nil, inactive
// or empty, or when no resolution has been synchronized yet.
func (r *Renderer) Render(src Source) FrameStats {
	var stats FrameStats
	if src == nil || !src.Active() || src.Size() == 0 || r.cfg.PointsPerOctave == 0 {
		return stats
	}

	if r.vertices.Fit(r.cfg.PointsPerOctave) {
		Logger().Debug("nyquist: vertex arena resized",
			slog.Uint64("points_per_octave", uint64(r.cfg.PointsPerOctave)),
			slog.Int("capacity", r.vertices.Capacity()))
	}
	r.vertices.Reset()
	r.window.Reset()

	grouping := octave.NewGrouping(r.cfg.PointsPerOctave, r.opts.startFrequency)
	for band := range grouping.Bands(src) {
		var acc spline.Accumulator
		for i := band.First; i < band.Last; i++ {
			acc = acc.Fold(src.Phase(i), src.MagnitudeRaw(i), src.Coherence(i))
		}
		stats.Bands++

		point, ok := acc.Close(r.opts.policy)
		if point.Degenerate {
			stats.Degenerate++
		}
		if !ok {
			continue
		}
		point.Frequency = grouping.Center(band.Index)

		if seg, ok := r.window.Push(point); ok {
			r.emit(seg, &stats)
		}
	}
	if seg, ok := r.window.Flush(); ok {
		r.emit(seg, &stats)
	}

	r.program.Use()
	r.program.Apply(r.uniforms())

	resized, err := r.manager.Draw(r.vertices.Data(), r.vertices.Capacity(), r.vertices.Count())
	if err != nil {
		Logger().Error("nyquist: draw failed", slog.Any("error", err))
		return stats
	}
	stats.Resized = resized
	stats.Emitted = r.vertices.Count()
	return stats
}

func (r *Renderer) emit(seg spline.Segment, stats *FrameStats) {
	if err := r.vertices.Emit(seg); err != nil {
		stats.Dropped++
		Logger().Warn("nyquist: vertex record dropped", slog.Any("error", err))
	}
}

func (r *Renderer) uniforms() gpu.Uniforms {
	alpha := coherenceAlphaOff
	if r.cfg.CoherenceGate {
		alpha = coherenceAlphaOn
	}
	return gpu.Uniforms{
		Matrix:             r.matrix,
		Screen:             r.screen,
		Width:              r.opts.lineWidth * r.retina,
		Color:              r.opts.color,
		CoherenceThreshold: r.cfg.CoherenceThreshold,
		CoherenceAlpha:     alpha,
	}
}

// Release deletes the GPU objects. The renderer may be used again; the next
// Render recreates them.
func (r *Renderer) Release() {
	r.manager.Release()
}
