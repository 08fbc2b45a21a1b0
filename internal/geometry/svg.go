package geometry

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"honnef.co/go/curve"
)

// SVGOptions controls WriteSVG.
type SVGOptions struct {
	// Width and Height of the image in pixels.
	Width, Height int

	// Bounds is the plot area mapped onto the image: xMin, xMax, yMin, yMax.
	Bounds [4]float64

	// Stroke is the CSS stroke color.
	Stroke string

	// StrokeWidth in pixels.
	StrokeWidth float64
}

// DefaultSVGOptions shows the unit circle with a margin.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:       800,
		Height:      800,
		Bounds:      [4]float64{-1.5, 1.5, -1.5, 1.5},
		Stroke:      "#1f77b4",
		StrokeWidth: 2,
	}
}

// WriteSVG draws the spans as an SVG document. Each run of spans with the
// same opacity becomes one path element.
func WriteSVG(w io.Writer, spans []Span, opts SVGOptions) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)

	for start := 0; start < len(spans); {
		end := start + 1
		for end < len(spans) && spans[end].Alpha == spans[start].Alpha {
			end++
		}
		d := pathData(spans[start:end], opts)
		if d != "" {
			fmt.Fprintf(bw, `<path d="%s" fill="none" stroke="%s" stroke-width="%g" stroke-opacity="%.3f"/>`+"\n",
				d, opts.Stroke, opts.StrokeWidth, spans[start].Alpha)
		}
		start = end
	}

	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func pathData(spans []Span, opts SVGOptions) string {
	var buf []byte
	for el := range Path(spans) {
		switch el.Kind {
		case curve.MoveToKind:
			x, y := project(el.P0, opts)
			buf = fmt.Appendf(buf, "M%.2f %.2f", x, y)
		case curve.CubicToKind:
			x1, y1 := project(el.P0, opts)
			x2, y2 := project(el.P1, opts)
			x3, y3 := project(el.P2, opts)
			buf = fmt.Appendf(buf, "C%.2f %.2f %.2f %.2f %.2f %.2f", x1, y1, x2, y2, x3, y3)
		}
	}
	return string(buf)
}

// project maps plot coordinates to image pixels with the imaginary axis up.
func project(p curve.Point, opts SVGOptions) (float64, float64) {
	xMin, xMax, yMin, yMax := opts.Bounds[0], opts.Bounds[1], opts.Bounds[2], opts.Bounds[3]
	x := (p.X - xMin) / (xMax - xMin) * float64(opts.Width)
	y := (yMax - p.Y) / (yMax - yMin) * float64(opts.Height)
	return x, y
}

// FitBounds returns square bounds centred on the origin that contain every
// finite span end point with a margin, for use as SVGOptions.Bounds. The
// unit circle is always included.
func FitBounds(spans []Span, margin float64) [4]float64 {
	r := 1.0
	for _, s := range spans {
		if !s.Finite() {
			continue
		}
		for _, p := range [2]curve.Point{s.Bezier[0], s.Bezier[3]} {
			r = max(r, math.Abs(p.X), math.Abs(p.Y))
		}
	}
	r *= 1 + margin
	return [4]float64{-r, r, -r, r}
}
