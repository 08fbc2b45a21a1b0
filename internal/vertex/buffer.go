// Package vertex packs spline segments into the flat float layout the GPU
// pipeline consumes.
package vertex

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-nyquist/internal/octave"
	"github.com/tphakala/go-nyquist/internal/spline"
)

// Record layout. Each segment is one vertex of Stride floats:
//
//	[0:4]  real parts of the four control points
//	[4:8]  imaginary parts of the four control points
//	[8:12] scalar controls
const (
	Stride = 12

	RealOffset    = 0
	ImagOffset    = 4
	ControlOffset = 8

	// AttributeSize is the number of floats per vertex attribute.
	AttributeSize = 4

	// BytesPerFloat is the size of one float32 on the GPU.
	BytesPerFloat = 4
)

// ErrOverflow is returned by Emit when a record does not fit.
var ErrOverflow = errors.New("vertex buffer overflow")

// Capacity returns the number of floats needed for the largest number of
// bands pointsPerOctave can produce over octave.MaxOctaves.
func Capacity(pointsPerOctave uint) int {
	return int(pointsPerOctave) * octave.MaxOctaves * Stride
}

// Buffer is a fixed-capacity arena of vertex records reused across frames.
// It grows or shrinks only through Fit.
type Buffer struct {
	data   []float32
	cursor int
	count  int
}

// NewBuffer creates a buffer sized for pointsPerOctave.
func NewBuffer(pointsPerOctave uint) *Buffer {
	b := &Buffer{}
	b.Fit(pointsPerOctave)
	return b
}

// Fit sizes the arena for pointsPerOctave. It reallocates only when the
// implied capacity differs from the current one and reports whether it did.
// A reallocation also rewinds the buffer.
func (b *Buffer) Fit(pointsPerOctave uint) bool {
	capacity := Capacity(pointsPerOctave)
	if b.data != nil && len(b.data) == capacity {
		return false
	}
	b.data = make([]float32, capacity)
	b.Reset()
	return true
}

// Reset rewinds the write cursor for a new frame. Previous contents stay in
// place and are overwritten by the next records.
func (b *Buffer) Reset() {
	b.cursor = 0
	b.count = 0
}

// Emit writes one segment at the cursor. If the record would not fit it
// returns ErrOverflow and leaves the buffer untouched.
func (b *Buffer) Emit(s spline.Segment) error {
	if b.cursor+Stride > len(b.data) {
		return fmt.Errorf("%w: record %d needs %d floats, capacity %d",
			ErrOverflow, b.count, b.cursor+Stride, len(b.data))
	}

	rec := b.data[b.cursor : b.cursor+Stride : b.cursor+Stride]
	for k, p := range s.Points {
		rec[RealOffset+k] = real(p)
		rec[ImagOffset+k] = imag(p)
	}
	copy(rec[ControlOffset:], s.Controls[:])

	b.cursor += Stride
	b.count++
	return nil
}

// Count returns the number of records written since the last Reset.
func (b *Buffer) Count() int {
	return b.count
}

// Capacity returns the arena size in floats.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Written returns the records written since the last Reset. The slice
// aliases the arena and is only valid until the next Emit or Fit.
func (b *Buffer) Written() []float32 {
	return b.data[:b.cursor]
}

// Data returns the whole arena.
func (b *Buffer) Data() []float32 {
	return b.data
}
