package spline

// PointsPerSegment is the number of control points a segment carries.
const PointsPerSegment = 4

// Segment is the render-ready unit: four control points and four scalar
// controls. The curve stage draws the span between Points[1] and Points[2].
type Segment struct {
	Points   [PointsPerSegment]complex64
	Controls [PointsPerSegment]float32
}

// Window turns the stream of control points of one frame into segments, one
// per point. Segment k holds points k-2, k-1, k and k+1 with indices clamped
// to the points that exist, so the first segment is a single dot and every
// later one spans the previous point to its own.
//
// Because segment k needs point k+1, Push returns the segment of the
// previous point; Flush returns the last one.
type Window struct {
	points  [PointsPerSegment]complex64
	pending ControlPoint
	n       int
}

// Reset forgets all points.
func (w *Window) Reset() {
	*w = Window{}
}

// Len returns the number of points pushed since the last Reset.
func (w *Window) Len() int {
	return w.n
}

// Push adds the next point. ok is false for the very first point of a frame.
func (w *Window) Push(p ControlPoint) (Segment, bool) {
	next := complex64(p.Direction)
	if w.n == 0 {
		w.points = [PointsPerSegment]complex64{next, next, next, next}
		w.pending = p
		w.n++
		return Segment{}, false
	}

	// points ends at the pending point k; shifting in k+1 yields the
	// segment of k.
	w.points = [PointsPerSegment]complex64{w.points[1], w.points[2], w.points[3], next}
	seg := w.segment()
	w.pending = p
	w.n++
	return seg, true
}

// Flush returns the segment of the last pushed point, clamping its missing
// successor to itself, and resets the window. ok is false when no point was
// pushed.
func (w *Window) Flush() (Segment, bool) {
	if w.n == 0 {
		return Segment{}, false
	}
	last := w.points[3]
	w.points = [PointsPerSegment]complex64{w.points[1], w.points[2], last, last}
	seg := w.segment()
	w.Reset()
	return seg, true
}

func (w *Window) segment() Segment {
	c := float32(w.pending.Coherence)
	return Segment{
		Points:   w.points,
		Controls: [PointsPerSegment]float32{c, c, c, c},
	}
}
