// Package geometry is the CPU counterpart of the curve shader: it expands
// vertex records into cubic Bézier spans and writes them as path elements
// or SVG.
package geometry

import (
	"iter"
	"math"

	"github.com/tphakala/go-nyquist/internal/vertex"
	"honnef.co/go/curve"
)

// Gate mirrors the coherence uniforms of the shader.
type Gate struct {
	// Threshold is the coherence below which spans are dimmed.
	Threshold float32

	// Strength is 1 when gating is on and 0 when it is off.
	Strength float32
}

// Alpha returns the opacity of a span with the given coherence. Below the
// threshold the opacity falls linearly with coherence, scaled by Strength.
func (g Gate) Alpha(coherence float32) float32 {
	if coherence >= g.Threshold || g.Threshold <= 0 {
		return 1
	}
	dimmed := max(coherence, 0) / g.Threshold
	return 1 + (dimmed-1)*g.Strength
}

// Span is the drawable piece of one vertex record.
type Span struct {
	// Bezier holds the start point, two control points and the end point.
	Bezier [4]curve.Point

	// Coherence is the scalar control of the record.
	Coherence float32

	// Alpha is the gated opacity.
	Alpha float32
}

// IsDot reports whether the span starts and ends at the same point.
func (s Span) IsDot() bool {
	return s.Bezier[0] == s.Bezier[3]
}

// Finite reports whether every coordinate of the span is finite.
func (s Span) Finite() bool {
	for _, p := range s.Bezier {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Expand converts whole vertex records into spans. A Catmull-Rom curve
// through the record's points P0..P3 is drawn between P1 and P2, as the
// Bézier P1, P1+(P2-P0)/6, P2-(P3-P1)/6, P2. A trailing partial record is
// ignored.
func Expand(records []float32, gate Gate) []Span {
	spans := make([]Span, 0, len(records)/vertex.Stride)
	for r := 0; r+vertex.Stride <= len(records); r += vertex.Stride {
		rec := records[r : r+vertex.Stride]
		var p [4]curve.Vec2
		for k := range p {
			p[k] = curve.Vec(float64(rec[vertex.RealOffset+k]), float64(rec[vertex.ImagOffset+k]))
		}

		c := rec[vertex.ControlOffset]
		spans = append(spans, Span{
			Bezier: [4]curve.Point{
				curve.Point(p[1]),
				offset(p[1], p[2].Sub(p[0]), 1.0/6),
				offset(p[2], p[3].Sub(p[1]), -1.0/6),
				curve.Point(p[2]),
			},
			Coherence: c,
			Alpha:     gate.Alpha(c),
		})
	}
	return spans
}

// offset returns p + d*s.
func offset(p, d curve.Vec2, s float64) curve.Point {
	return curve.Point{X: p.X + d.X*s, Y: p.Y + d.Y*s}
}

// Path yields the spans as one path. Dots only move the pen, and spans with
// non-finite coordinates break the path.
func Path(spans []Span) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		var pen curve.Point
		down := false
		for _, s := range spans {
			if !s.Finite() {
				down = false
				continue
			}
			if !down || pen != s.Bezier[0] {
				if !yield(curve.PathElement{Kind: curve.MoveToKind, P0: s.Bezier[0]}) {
					return
				}
				pen, down = s.Bezier[0], true
			}
			if s.IsDot() {
				continue
			}
			if !yield(curve.PathElement{
				Kind: curve.CubicToKind,
				P0:   s.Bezier[1],
				P1:   s.Bezier[2],
				P2:   s.Bezier[3],
			}) {
				return
			}
			pen = s.Bezier[3]
		}
	}
}
