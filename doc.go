// Package nyquist draws transfer-function measurements as a smooth Nyquist
// curve on the GPU.
//
// A measurement delivers hundreds or thousands of frequency bins per frame.
// Plotting each bin is dense at high frequencies and sparse at low ones, so
// the renderer groups bins into fractional-octave bands, averages each band
// into one control point and hands the points to a curve-drawing shader as a
// compact vertex stream.
//
// # Pipeline
//
// Each frame runs the same stages:
//
//	Source -> [octave bands] -> [circular mean] -> [4-point window] -> [vertex arena] -> GPU
//
//   - Bins are grouped into bands of 1/N octave above a start frequency,
//     where N is the points-per-octave resolution.
//   - Within a band, phasors are summed as vectors and magnitude and
//     coherence as scalars. Closing the band normalizes the mean phasor to
//     unit length and scales it by the mean magnitude, which avoids the
//     wrap-around error of averaging angles.
//   - Consecutive control points form four-point segments. The curve stage
//     draws a Catmull-Rom span between the middle two points.
//   - Each segment is one 12-float vertex record: four real parts, four
//     imaginary parts and four scalar controls carrying the band coherence.
//
// # Quick Start
//
//	r := nyquist.NewRenderer(device, program)
//	defer r.Release()
//
//	plot := nyquist.NewPlot()
//	r.Synchronize(plot) // at a quiescent point between frames
//
//	r.SetBounds(-1, 1, -1, 1)
//	r.SetViewport(width, height, 1)
//	stats := r.Render(source)
//
// For headless use, [Tessellate] renders one frame into host memory and
// returns the vertex records.
//
// # Threading
//
// A [Renderer] belongs to the render thread. [Renderer.Synchronize] is the
// only point where configuration crosses from the control thread; the caller
// invokes it while neither side is mid-frame. [Plot] is the control-side
// owner of the configuration and is safe for concurrent use.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to receive overflow
// warnings and configuration diagnostics.
package nyquist
