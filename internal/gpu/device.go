// Package gpu owns the vertex buffer lifecycle of the Nyquist series: it
// allocates storage once per resolution, uploads only the written records
// each frame and issues the point draw.
package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Device is the slice of a graphics API the buffer manager needs. All calls
// happen on the render thread that owns the context.
type Device interface {
	// GenVertexArray and GenBuffer create new object identities.
	GenVertexArray() uint32
	GenBuffer() uint32

	// DeleteVertexArray and DeleteBuffer release identities.
	DeleteVertexArray(id uint32)
	DeleteBuffer(id uint32)

	BindVertexArray(id uint32)
	BindBuffer(id uint32)

	// BufferData (re)allocates storage of size bytes for the bound buffer
	// without initial contents, for dynamic updates.
	BufferData(size int)

	// BufferSubData uploads data at offset 0 of the bound buffer.
	BufferSubData(data []float32)

	// VertexAttribPointer declares attribute index as size floats at
	// offset bytes into each stride-byte vertex.
	VertexAttribPointer(index uint32, size, stride int32, offset int)

	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)

	// DrawPoints draws count vertices with point topology.
	DrawPoints(count int32)
}

// Uniforms are the per-frame shader parameters of the series.
type Uniforms struct {
	// Matrix maps plot coordinates to clip space.
	Matrix mgl32.Mat4

	// Screen is the framebuffer size in pixels.
	Screen [2]float32

	// Width is the stroke width in pixels.
	Width float32

	// Color is the series color; the renderer only passes it through.
	Color mgl32.Vec4

	// CoherenceThreshold is the coherence below which spans are dimmed.
	CoherenceThreshold float32

	// CoherenceAlpha is the gate strength: 1 when gating is on, 0 when off.
	CoherenceAlpha float32
}

// Program is a linked shader program.
type Program interface {
	// Use makes the program current.
	Use()

	// Apply uploads the uniforms. It is called once per frame before the
	// draw.
	Apply(u Uniforms)
}
